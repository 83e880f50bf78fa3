package channel

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/crypto/tmhash"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// Packet is the unit of data sent over a channel.
type Packet struct {
	Sequence           uint64
	SourcePort         string
	SourceChannel      string
	DestinationPort    string
	DestinationChannel string
	Data               []byte
	// TimeoutHeight is a counterparty height, zero to disable.
	TimeoutHeight client.Height
	// TimeoutTimestamp is a counterparty time in unix nanoseconds, zero to disable.
	TimeoutTimestamp uint64
}

func NewPacket(
	data []byte,
	sequence uint64, sourcePort, sourceChannel,
	destinationPort, destinationChannel string,
	timeoutHeight client.Height, timeoutTimestamp uint64,
) Packet {
	return Packet{
		Data:               data,
		Sequence:           sequence,
		SourcePort:         sourcePort,
		SourceChannel:      sourceChannel,
		DestinationPort:    destinationPort,
		DestinationChannel: destinationChannel,
		TimeoutHeight:      timeoutHeight,
		TimeoutTimestamp:   timeoutTimestamp,
	}
}

// Marshal encodes p as ibc.core.channel.v1.Packet.
func (p Packet) Marshal() []byte {
	return codec.NewEncoder().
		Uint64(1, p.Sequence).
		String(2, p.SourcePort).
		String(3, p.SourceChannel).
		String(4, p.DestinationPort).
		String(5, p.DestinationChannel).
		Bytes(6, p.Data).
		Message(7, p.TimeoutHeight.Marshal()).
		Uint64(8, p.TimeoutTimestamp).
		Encode()
}

func UnmarshalPacket(bz []byte) (Packet, error) {
	var p Packet
	err := codec.DecodeFields(bz, func(f codec.Field) (err error) {
		switch f.Num {
		case 1:
			p.Sequence = f.Varint
		case 2:
			p.SourcePort = f.String()
		case 3:
			p.SourceChannel = f.String()
		case 4:
			p.DestinationPort = f.String()
		case 5:
			p.DestinationChannel = f.String()
		case 6:
			p.Data = append([]byte(nil), f.Bytes...)
		case 7:
			p.TimeoutHeight, err = client.UnmarshalHeight(f.Bytes)
		case 8:
			p.TimeoutTimestamp = f.Varint
		}
		return err
	})
	if err != nil {
		return Packet{}, sdkerrors.Wrap(ErrInvalidPacket, err.Error())
	}
	return p, nil
}

// ValidateBasic performs stateless checks of the packet.
func (p Packet) ValidateBasic() error {
	if err := host.PortIdentifierValidator(p.SourcePort); err != nil {
		return sdkerrors.Wrap(err, "invalid source port ID")
	}
	if err := host.PortIdentifierValidator(p.DestinationPort); err != nil {
		return sdkerrors.Wrap(err, "invalid destination port ID")
	}
	if err := host.ChannelIdentifierValidator(p.SourceChannel); err != nil {
		return sdkerrors.Wrap(err, "invalid source channel ID")
	}
	if err := host.ChannelIdentifierValidator(p.DestinationChannel); err != nil {
		return sdkerrors.Wrap(err, "invalid destination channel ID")
	}
	if p.Sequence == 0 {
		return sdkerrors.Wrap(ErrInvalidPacket, "packet sequence cannot be 0")
	}
	if p.TimeoutHeight.IsZero() && p.TimeoutTimestamp == 0 {
		return sdkerrors.Wrap(ErrInvalidTimeout, "packet timeout height and packet timeout timestamp cannot both be 0")
	}
	if len(p.Data) == 0 {
		return sdkerrors.Wrap(ErrInvalidPacket, "packet data bytes cannot be empty")
	}
	return nil
}

// TimedOut reports whether the packet can no longer be received on a chain
// at height and timestamp.
func (p Packet) TimedOut(height client.Height, timestamp uint64) bool {
	if !p.TimeoutHeight.IsZero() && height.GTE(p.TimeoutHeight) {
		return true
	}
	return p.TimeoutTimestamp != 0 && timestamp >= p.TimeoutTimestamp
}

// CommitPacket returns the packet commitment bytes. The commitment consists of:
// sha256_hash(timeout_timestamp + timeout_height.RevisionNumber + timeout_height.RevisionHeight + sha256_hash(data))
// from a given packet. All integers are 8 byte big endian.
func CommitPacket(packet Packet) []byte {
	buf := sdk.Uint64ToBigEndian(packet.TimeoutTimestamp)

	revisionNumber := sdk.Uint64ToBigEndian(packet.TimeoutHeight.RevisionNumber)
	buf = append(buf, revisionNumber...)

	revisionHeight := sdk.Uint64ToBigEndian(packet.TimeoutHeight.RevisionHeight)
	buf = append(buf, revisionHeight...)

	buf = append(buf, tmhash.Sum(packet.Data)...)

	return tmhash.Sum(buf)
}

// CommitAcknowledgement returns the hash of the acknowledgement bytes.
func CommitAcknowledgement(data []byte) []byte {
	return tmhash.Sum(data)
}

// ReceiptValue is stored as the receipt of an unordered packet.
var ReceiptValue = []byte{byte(1)}
