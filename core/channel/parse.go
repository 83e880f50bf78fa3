package channel

import (
	"encoding/hex"
	"strconv"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// PacketAcknowledgement is a packet together with the acknowledgement written for it.
type PacketAcknowledgement struct {
	Packet          Packet
	Acknowledgement []byte
}

// PacketsFromEvents returns the packets of every event of eventType, which
// must be one of the packet events.
func PacketsFromEvents(eventType string, events []abci.Event) ([]Packet, error) {
	var packets []Packet
	for _, ev := range events {
		if ev.Type != eventType {
			continue
		}
		packet, _, err := parsePacketEvent(ev)
		if err != nil {
			return nil, err
		}
		packets = append(packets, packet)
	}
	return packets, nil
}

// AcknowledgementsFromEvents returns the packets and acknowledgements of every
// write_acknowledgement event.
func AcknowledgementsFromEvents(events []abci.Event) ([]PacketAcknowledgement, error) {
	var acks []PacketAcknowledgement
	for _, ev := range events {
		if ev.Type != EventTypeWriteAck {
			continue
		}
		packet, ack, err := parsePacketEvent(ev)
		if err != nil {
			return nil, err
		}
		if len(ack) == 0 {
			return nil, sdkerrors.Wrapf(ErrInvalidAcknowledgement, "event %s has no acknowledgement", ev.Type)
		}
		acks = append(acks, PacketAcknowledgement{Packet: packet, Acknowledgement: ack})
	}
	return acks, nil
}

// parsePacketEvent reads the packet attributes of a single event. All
// attributes of a packet are included in one event.
func parsePacketEvent(ev abci.Event) (packet Packet, ack []byte, err error) {
	for _, attr := range ev.Attributes {
		v := string(attr.Value)
		switch string(attr.Key) {
		case AttributeKeyDataHex:
			packet.Data, err = hex.DecodeString(v)
		case AttributeKeyAckHex:
			ack, err = hex.DecodeString(v)
		case AttributeKeyTimeoutHeight:
			packet.TimeoutHeight, err = client.ParseHeight(v)
		case AttributeKeyTimeoutTimestamp:
			packet.TimeoutTimestamp, err = strconv.ParseUint(v, 10, 64)
		case AttributeKeySequence:
			packet.Sequence, err = strconv.ParseUint(v, 10, 64)
		case AttributeKeySrcPort:
			packet.SourcePort = v
		case AttributeKeySrcChannel:
			packet.SourceChannel = v
		case AttributeKeyDstPort:
			packet.DestinationPort = v
		case AttributeKeyDstChannel:
			packet.DestinationChannel = v
		}
		if err != nil {
			return Packet{}, nil, sdkerrors.Wrapf(ErrInvalidPacket, "attribute %s of event %s: %v", attr.Key, ev.Type, err)
		}
	}
	// acknowledge and timeout events do not carry the packet data
	if ev.Type == EventTypeSendPacket || ev.Type == EventTypeRecvPacket || ev.Type == EventTypeWriteAck {
		if err := packet.ValidateBasic(); err != nil {
			return Packet{}, nil, err
		}
	}
	return packet, ack, nil
}
