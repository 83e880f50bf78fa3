package channel

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

const (
	TypeMsgChannelOpenInit     = "channel_open_init"
	TypeMsgChannelOpenTry      = "channel_open_try"
	TypeMsgChannelOpenAck      = "channel_open_ack"
	TypeMsgChannelOpenConfirm  = "channel_open_confirm"
	TypeMsgChannelCloseInit    = "channel_close_init"
	TypeMsgChannelCloseConfirm = "channel_close_confirm"
	TypeMsgRecvPacket          = "recv_packet"
	TypeMsgAcknowledgement     = "acknowledge_packet"
	TypeMsgTimeout             = "timeout_packet"
	TypeMsgTimeoutOnClose      = "timeout_on_close_packet"
)

// MsgChannelOpenInit defines an sdk.Msg to initialize a channel handshake. It
// is called by a relayer on Chain A. The version is the one the initiating
// module proposes, and may be empty.
type MsgChannelOpenInit struct {
	PortID  string
	Channel ChannelEnd
	Signer  string
}

func NewMsgChannelOpenInit(
	portID, version string, channelOrder Order, connectionHops []string,
	counterpartyPortID string, signer string,
) *MsgChannelOpenInit {
	counterparty := NewCounterparty(counterpartyPortID, "")
	channel := NewChannel(INIT, channelOrder, counterparty, connectionHops, version)
	return &MsgChannelOpenInit{
		PortID:  portID,
		Channel: channel,
		Signer:  signer,
	}
}

func (msg MsgChannelOpenInit) Type() string { return TypeMsgChannelOpenInit }

func (msg MsgChannelOpenInit) GetSigner() string { return msg.Signer }

func (msg MsgChannelOpenInit) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.PortID); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if msg.Channel.State != INIT {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state must be INIT in MsgChannelOpenInit. expected: %s, got: %s", INIT, msg.Channel.State)
	}
	if msg.Channel.Counterparty.ChannelID != "" {
		return sdkerrors.Wrap(ErrInvalidCounterparty, "counterparty channel identifier must be empty")
	}
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Channel.ValidateBasic()
}

// MsgChannelOpenTry defines a msg sent by a Relayer to try to open a channel
// on Chain B.
type MsgChannelOpenTry struct {
	PortID              string
	Channel             ChannelEnd
	CounterpartyVersion string
	ProofInit           []byte
	ProofHeight         client.Height
	Signer              string
}

func NewMsgChannelOpenTry(
	portID, version string, channelOrder Order, connectionHops []string,
	counterpartyPortID, counterpartyChannelID, counterpartyVersion string,
	proofInit []byte, proofHeight client.Height, signer string,
) *MsgChannelOpenTry {
	counterparty := NewCounterparty(counterpartyPortID, counterpartyChannelID)
	channel := NewChannel(TRYOPEN, channelOrder, counterparty, connectionHops, version)
	return &MsgChannelOpenTry{
		PortID:              portID,
		Channel:             channel,
		CounterpartyVersion: counterpartyVersion,
		ProofInit:           proofInit,
		ProofHeight:         proofHeight,
		Signer:              signer,
	}
}

func (msg MsgChannelOpenTry) Type() string { return TypeMsgChannelOpenTry }

func (msg MsgChannelOpenTry) GetSigner() string { return msg.Signer }

func (msg MsgChannelOpenTry) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.PortID); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if len(msg.ProofInit) == 0 {
		return sdkerrors.Wrap(commitment.ErrInvalidProof, "cannot submit an empty proof")
	}
	if msg.ProofHeight.IsZero() {
		return sdkerrors.Wrap(client.ErrInvalidHeight, "proof height must be non-zero")
	}
	if msg.Channel.State != TRYOPEN {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state must be TRYOPEN in MsgChannelOpenTry. expected: %s, got: %s", TRYOPEN, msg.Channel.State)
	}
	// counterparty validate basic allows empty counterparty channel identifiers
	if err := host.ChannelIdentifierValidator(msg.Channel.Counterparty.ChannelID); err != nil {
		return sdkerrors.Wrap(err, "invalid counterparty channel ID")
	}
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Channel.ValidateBasic()
}

// MsgChannelOpenAck defines a msg sent by a Relayer to Chain A to acknowledge
// the change of channel state to TRYOPEN on Chain B.
type MsgChannelOpenAck struct {
	PortID                string
	ChannelID             string
	CounterpartyChannelID string
	CounterpartyVersion   string
	ProofTry              []byte
	ProofHeight           client.Height
	Signer                string
}

func NewMsgChannelOpenAck(
	portID, channelID, counterpartyChannelID string, cpv string, proofTry []byte, proofHeight client.Height,
	signer string,
) *MsgChannelOpenAck {
	return &MsgChannelOpenAck{
		PortID:                portID,
		ChannelID:             channelID,
		CounterpartyChannelID: counterpartyChannelID,
		CounterpartyVersion:   cpv,
		ProofTry:              proofTry,
		ProofHeight:           proofHeight,
		Signer:                signer,
	}
}

func (msg MsgChannelOpenAck) Type() string { return TypeMsgChannelOpenAck }

func (msg MsgChannelOpenAck) GetSigner() string { return msg.Signer }

func (msg MsgChannelOpenAck) ValidateBasic() error {
	if err := validatePortChannel(msg.PortID, msg.ChannelID); err != nil {
		return err
	}
	if err := host.ChannelIdentifierValidator(msg.CounterpartyChannelID); err != nil {
		return sdkerrors.Wrap(err, "invalid counterparty channel ID")
	}
	if err := validateProof(msg.ProofTry, msg.ProofHeight); err != nil {
		return err
	}
	return host.ValidateSigner(msg.Signer)
}

// MsgChannelOpenConfirm defines a msg sent by a Relayer to Chain B to
// acknowledge the change of channel state to OPEN on Chain A.
type MsgChannelOpenConfirm struct {
	PortID      string
	ChannelID   string
	ProofAck    []byte
	ProofHeight client.Height
	Signer      string
}

func NewMsgChannelOpenConfirm(portID, channelID string, proofAck []byte, proofHeight client.Height, signer string) *MsgChannelOpenConfirm {
	return &MsgChannelOpenConfirm{
		PortID:      portID,
		ChannelID:   channelID,
		ProofAck:    proofAck,
		ProofHeight: proofHeight,
		Signer:      signer,
	}
}

func (msg MsgChannelOpenConfirm) Type() string { return TypeMsgChannelOpenConfirm }

func (msg MsgChannelOpenConfirm) GetSigner() string { return msg.Signer }

func (msg MsgChannelOpenConfirm) ValidateBasic() error {
	if err := validatePortChannel(msg.PortID, msg.ChannelID); err != nil {
		return err
	}
	if err := validateProof(msg.ProofAck, msg.ProofHeight); err != nil {
		return err
	}
	return host.ValidateSigner(msg.Signer)
}

// MsgChannelCloseInit defines a msg sent by a Relayer to Chain A to close a
// channel with Chain B.
type MsgChannelCloseInit struct {
	PortID    string
	ChannelID string
	Signer    string
}

func NewMsgChannelCloseInit(portID, channelID, signer string) *MsgChannelCloseInit {
	return &MsgChannelCloseInit{PortID: portID, ChannelID: channelID, Signer: signer}
}

func (msg MsgChannelCloseInit) Type() string { return TypeMsgChannelCloseInit }

func (msg MsgChannelCloseInit) GetSigner() string { return msg.Signer }

func (msg MsgChannelCloseInit) ValidateBasic() error {
	if err := validatePortChannel(msg.PortID, msg.ChannelID); err != nil {
		return err
	}
	return host.ValidateSigner(msg.Signer)
}

// MsgChannelCloseConfirm defines a msg sent by a Relayer to Chain B to
// acknowledge the change of channel state to CLOSED on Chain A.
type MsgChannelCloseConfirm struct {
	PortID      string
	ChannelID   string
	ProofInit   []byte
	ProofHeight client.Height
	Signer      string
}

func NewMsgChannelCloseConfirm(portID, channelID string, proofInit []byte, proofHeight client.Height, signer string) *MsgChannelCloseConfirm {
	return &MsgChannelCloseConfirm{
		PortID:      portID,
		ChannelID:   channelID,
		ProofInit:   proofInit,
		ProofHeight: proofHeight,
		Signer:      signer,
	}
}

func (msg MsgChannelCloseConfirm) Type() string { return TypeMsgChannelCloseConfirm }

func (msg MsgChannelCloseConfirm) GetSigner() string { return msg.Signer }

func (msg MsgChannelCloseConfirm) ValidateBasic() error {
	if err := validatePortChannel(msg.PortID, msg.ChannelID); err != nil {
		return err
	}
	if err := validateProof(msg.ProofInit, msg.ProofHeight); err != nil {
		return err
	}
	return host.ValidateSigner(msg.Signer)
}

// MsgRecvPacket receives incoming IBC packet
type MsgRecvPacket struct {
	Packet          Packet
	ProofCommitment []byte
	ProofHeight     client.Height
	Signer          string
}

func NewMsgRecvPacket(packet Packet, proofCommitment []byte, proofHeight client.Height, signer string) *MsgRecvPacket {
	return &MsgRecvPacket{
		Packet:          packet,
		ProofCommitment: proofCommitment,
		ProofHeight:     proofHeight,
		Signer:          signer,
	}
}

func (msg MsgRecvPacket) Type() string { return TypeMsgRecvPacket }

func (msg MsgRecvPacket) GetSigner() string { return msg.Signer }

func (msg MsgRecvPacket) ValidateBasic() error {
	if err := validateProof(msg.ProofCommitment, msg.ProofHeight); err != nil {
		return err
	}
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Packet.ValidateBasic()
}

// MsgTimeout receives timed-out packet
type MsgTimeout struct {
	Packet           Packet
	ProofUnreceived  []byte
	ProofHeight      client.Height
	NextSequenceRecv uint64
	Signer           string
}

func NewMsgTimeout(packet Packet, nextSequenceRecv uint64, proofUnreceived []byte, proofHeight client.Height, signer string) *MsgTimeout {
	return &MsgTimeout{
		Packet:           packet,
		NextSequenceRecv: nextSequenceRecv,
		ProofUnreceived:  proofUnreceived,
		ProofHeight:      proofHeight,
		Signer:           signer,
	}
}

func (msg MsgTimeout) Type() string { return TypeMsgTimeout }

func (msg MsgTimeout) GetSigner() string { return msg.Signer }

func (msg MsgTimeout) ValidateBasic() error {
	if err := validateProof(msg.ProofUnreceived, msg.ProofHeight); err != nil {
		return err
	}
	if msg.NextSequenceRecv == 0 {
		return sdkerrors.Wrap(sdkerrors.ErrInvalidSequence, "next sequence receive cannot be 0")
	}
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Packet.ValidateBasic()
}

// MsgTimeoutOnClose times out a packet whose destination channel is closed.
type MsgTimeoutOnClose struct {
	Packet           Packet
	ProofUnreceived  []byte
	ProofClose       []byte
	ProofHeight      client.Height
	NextSequenceRecv uint64
	Signer           string
}

func NewMsgTimeoutOnClose(
	packet Packet, nextSequenceRecv uint64,
	proofUnreceived, proofClose []byte,
	proofHeight client.Height, signer string,
) *MsgTimeoutOnClose {
	return &MsgTimeoutOnClose{
		Packet:           packet,
		NextSequenceRecv: nextSequenceRecv,
		ProofUnreceived:  proofUnreceived,
		ProofClose:       proofClose,
		ProofHeight:      proofHeight,
		Signer:           signer,
	}
}

func (msg MsgTimeoutOnClose) Type() string { return TypeMsgTimeoutOnClose }

func (msg MsgTimeoutOnClose) GetSigner() string { return msg.Signer }

func (msg MsgTimeoutOnClose) ValidateBasic() error {
	if msg.NextSequenceRecv == 0 {
		return sdkerrors.Wrap(sdkerrors.ErrInvalidSequence, "next sequence receive cannot be 0")
	}
	if len(msg.ProofUnreceived) == 0 {
		return sdkerrors.Wrap(commitment.ErrInvalidProof, "cannot submit an empty proof")
	}
	if err := validateProof(msg.ProofClose, msg.ProofHeight); err != nil {
		return err
	}
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Packet.ValidateBasic()
}

// MsgAcknowledgement receives incoming IBC acknowledgement
type MsgAcknowledgement struct {
	Packet          Packet
	Acknowledgement []byte
	ProofAcked      []byte
	ProofHeight     client.Height
	Signer          string
}

func NewMsgAcknowledgement(
	packet Packet,
	ack, proofAcked []byte,
	proofHeight client.Height,
	signer string,
) *MsgAcknowledgement {
	return &MsgAcknowledgement{
		Packet:          packet,
		Acknowledgement: ack,
		ProofAcked:      proofAcked,
		ProofHeight:     proofHeight,
		Signer:          signer,
	}
}

func (msg MsgAcknowledgement) Type() string { return TypeMsgAcknowledgement }

func (msg MsgAcknowledgement) GetSigner() string { return msg.Signer }

func (msg MsgAcknowledgement) ValidateBasic() error {
	if err := validateProof(msg.ProofAcked, msg.ProofHeight); err != nil {
		return err
	}
	if len(msg.Acknowledgement) == 0 {
		return sdkerrors.Wrap(ErrInvalidAcknowledgement, "ack bytes cannot be empty")
	}
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Packet.ValidateBasic()
}

func validatePortChannel(portID, channelID string) error {
	if err := host.PortIdentifierValidator(portID); err != nil {
		return sdkerrors.Wrap(err, "invalid port ID")
	}
	if err := host.ChannelIdentifierValidator(channelID); err != nil {
		return sdkerrors.Wrap(ErrInvalidChannelIdentifier, err.Error())
	}
	return nil
}

func validateProof(proof []byte, proofHeight client.Height) error {
	if len(proof) == 0 {
		return sdkerrors.Wrap(commitment.ErrInvalidProof, "cannot submit an empty proof")
	}
	if proofHeight.IsZero() {
		return sdkerrors.Wrap(client.ErrInvalidHeight, "proof height must be non-zero")
	}
	return nil
}
