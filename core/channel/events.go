package channel

import (
	"encoding/hex"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// IBC channel events
const (
	EventTypeChannelOpenInit     = "channel_open_init"
	EventTypeChannelOpenTry      = "channel_open_try"
	EventTypeChannelOpenAck      = "channel_open_ack"
	EventTypeChannelOpenConfirm  = "channel_open_confirm"
	EventTypeChannelCloseInit    = "channel_close_init"
	EventTypeChannelCloseConfirm = "channel_close_confirm"
	EventTypeChannelClosed       = "channel_closed"

	AttributeKeyConnectionID       = "connection_id"
	AttributeKeyPortID             = "port_id"
	AttributeKeyChannelID          = "channel_id"
	AttributeKeyVersion            = "version"
	AttributeCounterpartyPortID    = "counterparty_port_id"
	AttributeCounterpartyChannelID = "counterparty_channel_id"
)

// IBC packet events
const (
	EventTypeSendPacket           = "send_packet"
	EventTypeRecvPacket           = "recv_packet"
	EventTypeWriteAck             = "write_acknowledgement"
	EventTypeAcknowledgePacket    = "acknowledge_packet"
	EventTypeTimeoutPacket        = "timeout_packet"
	EventTypeTimeoutPacketOnClose = "timeout_on_close"

	AttributeKeyDataHex          = "packet_data_hex"
	AttributeKeyAckHex           = "packet_ack_hex"
	AttributeKeyTimeoutHeight    = "packet_timeout_height"
	AttributeKeyTimeoutTimestamp = "packet_timeout_timestamp"
	AttributeKeySequence         = "packet_sequence"
	AttributeKeySrcPort          = "packet_src_port"
	AttributeKeySrcChannel       = "packet_src_channel"
	AttributeKeyDstPort          = "packet_dst_port"
	AttributeKeyDstChannel       = "packet_dst_channel"
	AttributeKeyChannelOrdering  = "packet_channel_ordering"
	AttributeKeyConnection       = "packet_connection"
)

func emitChannelEvent(ctx ExecutionContext, eventType, portID, channelID string, channel ChannelEnd) {
	ctx.EmitEvent(sdk.NewEvent(
		eventType,
		sdk.NewAttribute(AttributeKeyPortID, portID),
		sdk.NewAttribute(AttributeKeyChannelID, channelID),
		sdk.NewAttribute(AttributeCounterpartyPortID, channel.Counterparty.PortID),
		sdk.NewAttribute(AttributeCounterpartyChannelID, channel.Counterparty.ChannelID),
		sdk.NewAttribute(AttributeKeyConnectionID, channel.ConnectionHops[0]),
		sdk.NewAttribute(AttributeKeyVersion, channel.Version),
	))
}

func emitChannelOpenInitEvent(ctx ExecutionContext, portID, channelID string, channel ChannelEnd) {
	emitChannelEvent(ctx, EventTypeChannelOpenInit, portID, channelID, channel)
}

func emitChannelOpenTryEvent(ctx ExecutionContext, portID, channelID string, channel ChannelEnd) {
	emitChannelEvent(ctx, EventTypeChannelOpenTry, portID, channelID, channel)
}

func emitChannelOpenAckEvent(ctx ExecutionContext, portID, channelID string, channel ChannelEnd) {
	emitChannelEvent(ctx, EventTypeChannelOpenAck, portID, channelID, channel)
}

func emitChannelOpenConfirmEvent(ctx ExecutionContext, portID, channelID string, channel ChannelEnd) {
	emitChannelEvent(ctx, EventTypeChannelOpenConfirm, portID, channelID, channel)
}

func emitChannelClosedEvent(ctx ExecutionContext, eventType, portID, channelID string, channel ChannelEnd) {
	emitChannelEvent(ctx, eventType, portID, channelID, channel)
}

// packetAttributes are shared by every packet event.
func packetAttributes(packet Packet, channel ChannelEnd) []sdk.Attribute {
	return []sdk.Attribute{
		sdk.NewAttribute(AttributeKeyTimeoutHeight, packet.TimeoutHeight.String()),
		sdk.NewAttribute(AttributeKeyTimeoutTimestamp, fmt.Sprintf("%d", packet.TimeoutTimestamp)),
		sdk.NewAttribute(AttributeKeySequence, fmt.Sprintf("%d", packet.Sequence)),
		sdk.NewAttribute(AttributeKeySrcPort, packet.SourcePort),
		sdk.NewAttribute(AttributeKeySrcChannel, packet.SourceChannel),
		sdk.NewAttribute(AttributeKeyDstPort, packet.DestinationPort),
		sdk.NewAttribute(AttributeKeyDstChannel, packet.DestinationChannel),
		sdk.NewAttribute(AttributeKeyChannelOrdering, channel.Ordering.String()),
		sdk.NewAttribute(AttributeKeyConnection, channel.ConnectionHops[0]),
	}
}

func emitSendPacketEvent(ctx ExecutionContext, packet Packet, channel ChannelEnd) {
	attrs := append([]sdk.Attribute{sdk.NewAttribute(AttributeKeyDataHex, hex.EncodeToString(packet.Data))}, packetAttributes(packet, channel)...)
	ctx.EmitEvent(sdk.NewEvent(EventTypeSendPacket, attrs...))
}

func emitRecvPacketEvent(ctx ExecutionContext, packet Packet, channel ChannelEnd) {
	attrs := append([]sdk.Attribute{sdk.NewAttribute(AttributeKeyDataHex, hex.EncodeToString(packet.Data))}, packetAttributes(packet, channel)...)
	ctx.EmitEvent(sdk.NewEvent(EventTypeRecvPacket, attrs...))
}

func emitWriteAcknowledgementEvent(ctx ExecutionContext, packet Packet, channel ChannelEnd, acknowledgement []byte) {
	attrs := append([]sdk.Attribute{
		sdk.NewAttribute(AttributeKeyDataHex, hex.EncodeToString(packet.Data)),
		sdk.NewAttribute(AttributeKeyAckHex, hex.EncodeToString(acknowledgement)),
	}, packetAttributes(packet, channel)...)
	ctx.EmitEvent(sdk.NewEvent(EventTypeWriteAck, attrs...))
}

func emitAcknowledgePacketEvent(ctx ExecutionContext, packet Packet, channel ChannelEnd) {
	ctx.EmitEvent(sdk.NewEvent(EventTypeAcknowledgePacket, packetAttributes(packet, channel)...))
}

func emitTimeoutPacketEvent(ctx ExecutionContext, packet Packet, channel ChannelEnd) {
	ctx.EmitEvent(sdk.NewEvent(EventTypeTimeoutPacket, packetAttributes(packet, channel)...))
}

func emitTimeoutOnCloseEvent(ctx ExecutionContext, packet Packet, channel ChannelEnd) {
	ctx.EmitEvent(sdk.NewEvent(EventTypeTimeoutPacketOnClose, packetAttributes(packet, channel)...))
}
