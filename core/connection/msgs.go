package connection

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

const (
	TypeMsgConnectionOpenInit    = "connection_open_init"
	TypeMsgConnectionOpenTry     = "connection_open_try"
	TypeMsgConnectionOpenAck     = "connection_open_ack"
	TypeMsgConnectionOpenConfirm = "connection_open_confirm"
)

// MsgConnectionOpenInit defines the msg sent by an account on Chain A to
// initialize a connection with Chain B.
type MsgConnectionOpenInit struct {
	ClientID     string
	Counterparty Counterparty
	Version      *Version
	DelayPeriod  uint64
	Signer       string
}

func NewMsgConnectionOpenInit(
	clientID, counterpartyClientID string,
	counterpartyPrefix commitment.Prefix,
	version *Version, delayPeriod uint64, signer string,
) *MsgConnectionOpenInit {
	// counterparty must have the same delay period
	counterparty := NewCounterparty(counterpartyClientID, "", counterpartyPrefix)
	return &MsgConnectionOpenInit{
		ClientID:     clientID,
		Counterparty: counterparty,
		Version:      version,
		DelayPeriod:  delayPeriod,
		Signer:       signer,
	}
}

func (msg MsgConnectionOpenInit) Type() string { return TypeMsgConnectionOpenInit }

func (msg MsgConnectionOpenInit) GetSigner() string { return msg.Signer }

func (msg MsgConnectionOpenInit) ValidateBasic() error {
	if err := host.ClientIdentifierValidator(msg.ClientID); err != nil {
		return sdkerrors.Wrap(err, "invalid client ID")
	}
	if msg.Counterparty.ConnectionID != "" {
		return sdkerrors.Wrap(ErrInvalidCounterparty, "counterparty connection identifier must be empty")
	}
	// NOTE: Version can be nil on MsgConnectionOpenInit
	if msg.Version != nil {
		if err := ValidateVersion(*msg.Version); err != nil {
			return sdkerrors.Wrap(err, "basic validation of the provided version failed")
		}
	}
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	return msg.Counterparty.ValidateBasic()
}

// MsgConnectionOpenTry defines a msg sent by a Relayer to try to open a
// connection on Chain B.
type MsgConnectionOpenTry struct {
	ClientID             string
	ClientState          client.ClientState
	Counterparty         Counterparty
	DelayPeriod          uint64
	CounterpartyVersions []Version
	ProofHeight          client.Height
	ProofInit            []byte
	ProofClient          []byte
	ProofConsensus       []byte
	ConsensusHeight      client.Height
	Signer               string
}

func NewMsgConnectionOpenTry(
	clientID, counterpartyConnectionID, counterpartyClientID string,
	counterpartyClient client.ClientState,
	counterpartyPrefix commitment.Prefix,
	counterpartyVersions []Version, delayPeriod uint64,
	proofInit, proofClient, proofConsensus []byte,
	proofHeight, consensusHeight client.Height, signer string,
) *MsgConnectionOpenTry {
	counterparty := NewCounterparty(counterpartyClientID, counterpartyConnectionID, counterpartyPrefix)
	return &MsgConnectionOpenTry{
		ClientID:             clientID,
		ClientState:          counterpartyClient,
		Counterparty:         counterparty,
		DelayPeriod:          delayPeriod,
		CounterpartyVersions: counterpartyVersions,
		ProofInit:            proofInit,
		ProofClient:          proofClient,
		ProofConsensus:       proofConsensus,
		ProofHeight:          proofHeight,
		ConsensusHeight:      consensusHeight,
		Signer:               signer,
	}
}

func (msg MsgConnectionOpenTry) Type() string { return TypeMsgConnectionOpenTry }

func (msg MsgConnectionOpenTry) GetSigner() string { return msg.Signer }

func (msg MsgConnectionOpenTry) ValidateBasic() error {
	if err := host.ClientIdentifierValidator(msg.ClientID); err != nil {
		return sdkerrors.Wrap(err, "invalid client ID")
	}
	if msg.Counterparty.ConnectionID == "" {
		return sdkerrors.Wrap(ErrInvalidCounterparty, "counterparty connection identifier cannot be empty")
	}
	if err := msg.Counterparty.ValidateBasic(); err != nil {
		return err
	}
	if msg.ClientState == nil {
		return sdkerrors.Wrap(client.ErrInvalidClient, "counterparty client is nil")
	}
	if err := msg.ClientState.Validate(); err != nil {
		return sdkerrors.Wrap(err, "counterparty client is invalid")
	}
	if len(msg.CounterpartyVersions) == 0 {
		return sdkerrors.Wrap(ErrInvalidVersion, "empty counterparty versions")
	}
	for i, version := range msg.CounterpartyVersions {
		if err := ValidateVersion(version); err != nil {
			return sdkerrors.Wrapf(err, "basic validation failed on version with index %d", i)
		}
	}
	if err := validateProofs(msg.ProofInit, msg.ProofClient, msg.ProofConsensus); err != nil {
		return err
	}
	if msg.ProofHeight.IsZero() {
		return sdkerrors.Wrap(client.ErrInvalidHeight, "proof height must be non-zero")
	}
	if msg.ConsensusHeight.IsZero() {
		return sdkerrors.Wrap(client.ErrInvalidHeight, "consensus height must be non-zero")
	}
	return host.ValidateSigner(msg.Signer)
}

// MsgConnectionOpenAck defines a msg sent by a Relayer to Chain A to
// acknowledge the change of connection state to TRYOPEN on Chain B.
type MsgConnectionOpenAck struct {
	ConnectionID             string
	CounterpartyConnectionID string
	Version                  *Version
	ClientState              client.ClientState
	ProofHeight              client.Height
	ProofTry                 []byte
	ProofClient              []byte
	ProofConsensus           []byte
	ConsensusHeight          client.Height
	Signer                   string
}

func NewMsgConnectionOpenAck(
	connectionID, counterpartyConnectionID string, counterpartyClient client.ClientState,
	proofTry, proofClient, proofConsensus []byte,
	proofHeight, consensusHeight client.Height,
	version *Version,
	signer string,
) *MsgConnectionOpenAck {
	return &MsgConnectionOpenAck{
		ConnectionID:             connectionID,
		CounterpartyConnectionID: counterpartyConnectionID,
		ClientState:              counterpartyClient,
		ProofTry:                 proofTry,
		ProofClient:              proofClient,
		ProofConsensus:           proofConsensus,
		ProofHeight:              proofHeight,
		ConsensusHeight:          consensusHeight,
		Version:                  version,
		Signer:                   signer,
	}
}

func (msg MsgConnectionOpenAck) Type() string { return TypeMsgConnectionOpenAck }

func (msg MsgConnectionOpenAck) GetSigner() string { return msg.Signer }

func (msg MsgConnectionOpenAck) ValidateBasic() error {
	if err := host.ConnectionIdentifierValidator(msg.ConnectionID); err != nil {
		return sdkerrors.Wrap(ErrInvalidConnectionIdentifier, err.Error())
	}
	if err := host.ConnectionIdentifierValidator(msg.CounterpartyConnectionID); err != nil {
		return sdkerrors.Wrap(err, "invalid counterparty connection ID")
	}
	if msg.Version == nil {
		return sdkerrors.Wrap(ErrInvalidVersion, "version cannot be nil")
	}
	if err := ValidateVersion(*msg.Version); err != nil {
		return err
	}
	if msg.ClientState == nil {
		return sdkerrors.Wrap(client.ErrInvalidClient, "counterparty client is nil")
	}
	if err := msg.ClientState.Validate(); err != nil {
		return sdkerrors.Wrap(err, "counterparty client is invalid")
	}
	if err := validateProofs(msg.ProofTry, msg.ProofClient, msg.ProofConsensus); err != nil {
		return err
	}
	if msg.ProofHeight.IsZero() {
		return sdkerrors.Wrap(client.ErrInvalidHeight, "proof height must be non-zero")
	}
	if msg.ConsensusHeight.IsZero() {
		return sdkerrors.Wrap(client.ErrInvalidHeight, "consensus height must be non-zero")
	}
	return host.ValidateSigner(msg.Signer)
}

// MsgConnectionOpenConfirm defines a msg sent by a Relayer to Chain B to
// acknowledge the change of connection state to OPEN on Chain A.
type MsgConnectionOpenConfirm struct {
	ConnectionID string
	ProofAck     []byte
	ProofHeight  client.Height
	Signer       string
}

func NewMsgConnectionOpenConfirm(connectionID string, proofAck []byte, proofHeight client.Height, signer string) *MsgConnectionOpenConfirm {
	return &MsgConnectionOpenConfirm{
		ConnectionID: connectionID,
		ProofAck:     proofAck,
		ProofHeight:  proofHeight,
		Signer:       signer,
	}
}

func (msg MsgConnectionOpenConfirm) Type() string { return TypeMsgConnectionOpenConfirm }

func (msg MsgConnectionOpenConfirm) GetSigner() string { return msg.Signer }

func (msg MsgConnectionOpenConfirm) ValidateBasic() error {
	if err := host.ConnectionIdentifierValidator(msg.ConnectionID); err != nil {
		return sdkerrors.Wrap(ErrInvalidConnectionIdentifier, err.Error())
	}
	if len(msg.ProofAck) == 0 {
		return sdkerrors.Wrap(commitment.ErrInvalidProof, "cannot submit an empty proof")
	}
	if msg.ProofHeight.IsZero() {
		return sdkerrors.Wrap(client.ErrInvalidHeight, "proof height must be non-zero")
	}
	return host.ValidateSigner(msg.Signer)
}

func validateProofs(proofs ...[]byte) error {
	for _, proof := range proofs {
		if len(proof) == 0 {
			return sdkerrors.Wrap(commitment.ErrInvalidProof, "cannot submit an empty proof")
		}
	}
	return nil
}
