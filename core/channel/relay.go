package channel

import (
	"bytes"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// SendPacket is called by a module in order to send an IBC packet on a channel.
// The packet sequence generated for the packet to be sent is returned.
func (k Keeper) SendPacket(
	ctx ExecutionContext,
	sourcePort string,
	sourceChannel string,
	timeoutHeight client.Height,
	timeoutTimestamp uint64,
	data []byte,
) (uint64, error) {
	channel, err := ctx.ChannelEnd(sourcePort, sourceChannel)
	if err != nil {
		return 0, err
	}
	if channel.State != OPEN {
		return 0, sdkerrors.Wrapf(ErrInvalidChannelState, "channel is not OPEN (got %s)", channel.State)
	}
	if timeoutHeight.IsZero() && timeoutTimestamp == 0 {
		return 0, sdkerrors.Wrap(ErrInvalidTimeout, "packet timeout height and packet timeout timestamp cannot both be 0")
	}

	conn, err := ctx.ConnectionEnd(channel.ConnectionHops[0])
	if err != nil {
		return 0, err
	}
	clientState, err := ctx.ClientState(conn.ClientID)
	if err != nil {
		return 0, err
	}
	// prevent accidental sends with clients that cannot be updated
	if status := k.clientKeeper.Status(ctx, conn.ClientID); status != client.Active {
		return 0, sdkerrors.Wrapf(client.ErrClientNotActive, "cannot send packet using client (%s) with status %s", conn.ClientID, status)
	}

	// check if packet is timed out on the receiving chain
	latestHeight := clientState.GetLatestHeight()
	if !timeoutHeight.IsZero() && latestHeight.GTE(timeoutHeight) {
		return 0, sdkerrors.Wrapf(ErrPacketTimedOut, "receiving chain block height >= packet timeout height (%s >= %s)", latestHeight, timeoutHeight)
	}
	latestTimestamp, _, err := k.timestampAtHeight(ctx, conn, latestHeight)
	if err != nil {
		return 0, err
	}
	if timeoutTimestamp != 0 && latestTimestamp >= timeoutTimestamp {
		return 0, sdkerrors.Wrapf(ErrPacketTimedOut, "receiving chain block timestamp >= packet timeout timestamp (%d >= %d)", latestTimestamp, timeoutTimestamp)
	}

	sequence, err := ctx.NextSequenceSend(sourcePort, sourceChannel)
	if err != nil {
		return 0, err
	}

	packet := NewPacket(data, sequence, sourcePort, sourceChannel, channel.Counterparty.PortID, channel.Counterparty.ChannelID, timeoutHeight, timeoutTimestamp)
	if err := packet.ValidateBasic(); err != nil {
		return 0, sdkerrors.Wrap(err, "constructed packet failed basic validation")
	}

	if err := ctx.SetNextSequenceSend(sourcePort, sourceChannel, sequence+1); err != nil {
		return 0, err
	}
	if err := ctx.SetPacketCommitment(sourcePort, sourceChannel, sequence, CommitPacket(packet)); err != nil {
		return 0, err
	}

	k.logger.Info("packet sent", "sequence", sequence, "src-port", sourcePort, "src-channel", sourceChannel, "dst-port", packet.DestinationPort, "dst-channel", packet.DestinationChannel)
	emitSendPacketEvent(ctx, packet, channel)
	return sequence, nil
}

// RecvPacket is called by a module in order to receive & process an IBC packet
// sent on the corresponding channel end on the counterparty chain. A receipt
// or the next receive sequence is written before the module callback runs.
func (k Keeper) RecvPacket(
	ctx ExecutionContext,
	packet Packet,
	proof []byte,
	proofHeight client.Height,
) error {
	channel, err := ctx.ChannelEnd(packet.DestinationPort, packet.DestinationChannel)
	if err != nil {
		return err
	}
	if channel.State != OPEN {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state is not OPEN (got %s)", channel.State)
	}

	// packet must come from the channel's counterparty
	if packet.SourcePort != channel.Counterparty.PortID {
		return sdkerrors.Wrapf(ErrInvalidPacket, "packet source port doesn't match the counterparty's port (%s ≠ %s)", packet.SourcePort, channel.Counterparty.PortID)
	}
	if packet.SourceChannel != channel.Counterparty.ChannelID {
		return sdkerrors.Wrapf(ErrInvalidPacket, "packet source channel doesn't match the counterparty's channel (%s ≠ %s)", packet.SourceChannel, channel.Counterparty.ChannelID)
	}

	conn, err := k.getOpenConnection(ctx, channel.ConnectionHops)
	if err != nil {
		return err
	}

	// check if packet timed out by comparing it with the latest height of the chain
	selfHeight, selfTimestamp := ctx.HostHeight(), ctx.HostTimestamp()
	if packet.TimedOut(selfHeight, selfTimestamp) {
		return sdkerrors.Wrapf(ErrPacketTimedOut, "block height %s, timestamp %d, packet timeout height %s, timeout timestamp %d", selfHeight, selfTimestamp, packet.TimeoutHeight, packet.TimeoutTimestamp)
	}

	if err := k.connectionKeeper.VerifyPacketCommitment(
		ctx, conn, proofHeight, proof,
		packet.SourcePort, packet.SourceChannel, packet.Sequence,
		CommitPacket(packet),
	); err != nil {
		return proofFailure(err, "packet commitment")
	}

	switch channel.Ordering {
	case UNORDERED:
		if ctx.PacketReceipt(packet.DestinationPort, packet.DestinationChannel, packet.Sequence) {
			return sdkerrors.Wrapf(ErrPacketAlreadyReceived, "packet sequence %d", packet.Sequence)
		}
		if err := ctx.SetPacketReceipt(packet.DestinationPort, packet.DestinationChannel, packet.Sequence); err != nil {
			return err
		}

	case ORDERED:
		nextSequenceRecv, err := ctx.NextSequenceRecv(packet.DestinationPort, packet.DestinationChannel)
		if err != nil {
			return err
		}
		if packet.Sequence != nextSequenceRecv {
			return sdkerrors.Wrapf(ErrOutOfOrderPacket, "packet sequence ≠ next receive sequence (%d ≠ %d)", packet.Sequence, nextSequenceRecv)
		}
		if err := ctx.SetNextSequenceRecv(packet.DestinationPort, packet.DestinationChannel, nextSequenceRecv+1); err != nil {
			return err
		}

	default:
		return sdkerrors.Wrap(ErrInvalidChannelOrdering, channel.Ordering.String())
	}

	k.logger.Info("packet received", "sequence", packet.Sequence, "src-port", packet.SourcePort, "src-channel", packet.SourceChannel, "dst-port", packet.DestinationPort, "dst-channel", packet.DestinationChannel)
	emitRecvPacketEvent(ctx, packet, channel)
	return nil
}

// WriteAcknowledgement writes the acknowledgement of a received packet. It is
// called with the result of the module callback, or later by the module
// itself when the acknowledgement is asynchronous.
func (k Keeper) WriteAcknowledgement(ctx ExecutionContext, packet Packet, acknowledgement AcknowledgementI) error {
	channel, err := ctx.ChannelEnd(packet.DestinationPort, packet.DestinationChannel)
	if err != nil {
		return err
	}
	if channel.State != OPEN {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state is not OPEN (got %s)", channel.State)
	}

	if !k.received(ctx, packet, channel) {
		return sdkerrors.Wrapf(ErrInvalidPacket, "packet sequence %d has not been received", packet.Sequence)
	}

	// NOTE: IBC app modules might have written the acknowledgement synchronously on
	// the OnRecvPacket callback so we need to check if the acknowledgement is already
	// set on the store and return an error if so.
	if _, found := ctx.PacketAcknowledgement(packet.DestinationPort, packet.DestinationChannel, packet.Sequence); found {
		return sdkerrors.Wrapf(ErrAcknowledgementExists, "port ID (%s) channel ID (%s) sequence (%d)", packet.DestinationPort, packet.DestinationChannel, packet.Sequence)
	}

	if IsNilAcknowledgement(acknowledgement) {
		return sdkerrors.Wrap(ErrInvalidAcknowledgement, "acknowledgement cannot be nil")
	}
	bz := acknowledgement.Acknowledgement()
	if len(bz) == 0 {
		return sdkerrors.Wrap(ErrInvalidAcknowledgement, "acknowledgement cannot be empty")
	}

	if err := ctx.SetPacketAcknowledgement(packet.DestinationPort, packet.DestinationChannel, packet.Sequence, CommitAcknowledgement(bz)); err != nil {
		return err
	}

	k.logger.Info("acknowledgement written", "sequence", packet.Sequence, "src-port", packet.SourcePort, "src-channel", packet.SourceChannel, "dst-port", packet.DestinationPort, "dst-channel", packet.DestinationChannel)
	emitWriteAcknowledgementEvent(ctx, packet, channel, bz)
	return nil
}

func (k Keeper) received(ctx ValidationContext, packet Packet, channel ChannelEnd) bool {
	if channel.Ordering == ORDERED {
		next, err := ctx.NextSequenceRecv(packet.DestinationPort, packet.DestinationChannel)
		return err == nil && packet.Sequence < next
	}
	return ctx.PacketReceipt(packet.DestinationPort, packet.DestinationChannel, packet.Sequence)
}

// AcknowledgePacket is called by a module to process the acknowledgement of a
// packet previously sent by the calling module on a channel to a counterparty
// module on the counterparty chain. It deletes the packet commitment, so a
// packet is acknowledged at most once.
func (k Keeper) AcknowledgePacket(
	ctx ExecutionContext,
	packet Packet,
	acknowledgement []byte,
	proof []byte,
	proofHeight client.Height,
) error {
	channel, err := ctx.ChannelEnd(packet.SourcePort, packet.SourceChannel)
	if err != nil {
		return err
	}
	if channel.State != OPEN {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state is not OPEN (got %s)", channel.State)
	}

	// packet must have been sent to the channel's counterparty
	if packet.DestinationPort != channel.Counterparty.PortID {
		return sdkerrors.Wrapf(ErrInvalidPacket, "packet destination port doesn't match the counterparty's port (%s ≠ %s)", packet.DestinationPort, channel.Counterparty.PortID)
	}
	if packet.DestinationChannel != channel.Counterparty.ChannelID {
		return sdkerrors.Wrapf(ErrInvalidPacket, "packet destination channel doesn't match the counterparty's channel (%s ≠ %s)", packet.DestinationChannel, channel.Counterparty.ChannelID)
	}

	conn, err := k.getOpenConnection(ctx, channel.ConnectionHops)
	if err != nil {
		return err
	}

	if err := k.checkCommitment(ctx, packet); err != nil {
		return err
	}

	if err := k.connectionKeeper.VerifyPacketAcknowledgement(
		ctx, conn, proofHeight, proof,
		packet.DestinationPort, packet.DestinationChannel, packet.Sequence,
		CommitAcknowledgement(acknowledgement),
	); err != nil {
		return proofFailure(err, "packet acknowledgement")
	}

	// assert packets acknowledged in order
	if channel.Ordering == ORDERED {
		nextSequenceAck, err := ctx.NextSequenceAck(packet.SourcePort, packet.SourceChannel)
		if err != nil {
			return err
		}
		if packet.Sequence != nextSequenceAck {
			return sdkerrors.Wrapf(ErrOutOfOrderPacket, "packet sequence ≠ next ack sequence (%d ≠ %d)", packet.Sequence, nextSequenceAck)
		}
		if err := ctx.SetNextSequenceAck(packet.SourcePort, packet.SourceChannel, nextSequenceAck+1); err != nil {
			return err
		}
	}

	// delete packet commitment, since the packet has been acknowledged, the commitment is no longer necessary
	if err := ctx.DeletePacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence); err != nil {
		return err
	}

	k.logger.Info("packet acknowledged", "sequence", packet.Sequence, "src-port", packet.SourcePort, "src-channel", packet.SourceChannel, "dst-port", packet.DestinationPort, "dst-channel", packet.DestinationChannel)
	emitAcknowledgePacketEvent(ctx, packet, channel)
	return nil
}

// checkCommitment requires the commitment of packet to be stored. A missing
// commitment means the packet was already acknowledged or timed out.
func (k Keeper) checkCommitment(ctx ValidationContext, packet Packet) error {
	commitment, found := ctx.PacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence)
	if !found {
		return sdkerrors.Wrapf(ErrPacketCommitmentNotFound, "port ID (%s) channel ID (%s) sequence (%d)", packet.SourcePort, packet.SourceChannel, packet.Sequence)
	}
	packetCommitment := CommitPacket(packet)
	// verify we sent the packet and haven't cleared it out yet
	if !bytes.Equal(commitment, packetCommitment) {
		return sdkerrors.Wrapf(ErrInvalidPacket, "commitment bytes are not equal: got (%X), expected (%X)", packetCommitment, commitment)
	}
	return nil
}
