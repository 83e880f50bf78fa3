package channel

import (
	"encoding/hex"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func TestPacketsFromEvents(t *testing.T) {
	require := require.New(t)

	channel := NewChannel(OPEN, UNORDERED, NewCounterparty(counterpartyPortID, "channel-7"), []string{connectionID}, "v1")
	packet := NewPacket([]byte("data"), 3, portID, channelID, counterpartyPortID, "channel-7", timeoutHeight, 55)
	ack := NewResultAcknowledgement([]byte("ok")).Acknowledgement()

	send := append([]sdk.Attribute{sdk.NewAttribute(AttributeKeyDataHex, hex.EncodeToString(packet.Data))}, packetAttributes(packet, channel)...)
	writeAck := append([]sdk.Attribute{
		sdk.NewAttribute(AttributeKeyDataHex, hex.EncodeToString(packet.Data)),
		sdk.NewAttribute(AttributeKeyAckHex, hex.EncodeToString(ack)),
	}, packetAttributes(packet, channel)...)
	events := sdk.Events{
		sdk.NewEvent(EventTypeChannelOpenInit, sdk.NewAttribute(AttributeKeyPortID, portID)),
		sdk.NewEvent(EventTypeSendPacket, send...),
		sdk.NewEvent(EventTypeWriteAck, writeAck...),
		sdk.NewEvent(EventTypeAcknowledgePacket, packetAttributes(packet, channel)...),
	}.ToABCIEvents()

	packets, err := PacketsFromEvents(EventTypeSendPacket, events)
	require.NoError(err)
	require.Equal([]Packet{packet}, packets)

	// acknowledge events carry no data
	acked, err := PacketsFromEvents(EventTypeAcknowledgePacket, events)
	require.NoError(err)
	require.Len(acked, 1)
	require.Equal(packet.Sequence, acked[0].Sequence)
	require.Empty(acked[0].Data)

	acks, err := AcknowledgementsFromEvents(events)
	require.NoError(err)
	require.Equal([]PacketAcknowledgement{{Packet: packet, Acknowledgement: ack}}, acks)

	packets, err = PacketsFromEvents(EventTypeRecvPacket, events)
	require.NoError(err)
	require.Empty(packets)

	bad := sdk.Events{
		sdk.NewEvent(EventTypeSendPacket, sdk.NewAttribute(AttributeKeySequence, "three")),
	}.ToABCIEvents()
	_, err = PacketsFromEvents(EventTypeSendPacket, bad)
	require.ErrorIs(err, ErrInvalidPacket)

	noAck := sdk.Events{sdk.NewEvent(EventTypeWriteAck, send...)}.ToABCIEvents()
	_, err = AcknowledgementsFromEvents(noAck)
	require.ErrorIs(err, ErrInvalidAcknowledgement)
}
