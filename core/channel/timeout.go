package channel

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
)

// TimeoutPacket is called by a module which originally attempted to send a
// packet to a counterparty module, where the timeout height has passed on the
// counterparty chain without the packet being committed, to prove that the
// packet can no longer be executed and to allow the calling module to safely
// perform appropriate state transitions. TimeoutExecuted must be called after
// the module callback succeeds.
func (k Keeper) TimeoutPacket(
	ctx ValidationContext,
	packet Packet,
	proof []byte,
	proofHeight client.Height,
	nextSequenceRecv uint64,
) error {
	channel, err := ctx.ChannelEnd(packet.SourcePort, packet.SourceChannel)
	if err != nil {
		return err
	}
	if channel.State != OPEN {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state is not OPEN (got %s)", channel.State)
	}

	conn, err := k.checkTimeoutTarget(ctx, packet, channel)
	if err != nil {
		return err
	}

	// check that timeout height or timeout timestamp has passed on the other end,
	// as seen by the consensus state the proof is verified against
	proofTimestamp, consensusHeight, err := k.timestampAtHeight(ctx, conn, proofHeight)
	if err != nil {
		return err
	}
	if !packet.TimedOut(consensusHeight, proofTimestamp) {
		return sdkerrors.Wrapf(ErrTimeoutNotReached, "proof height %s, consensus height %s, proof timestamp %d, packet timeout height %s, timeout timestamp %d", proofHeight, consensusHeight, proofTimestamp, packet.TimeoutHeight, packet.TimeoutTimestamp)
	}

	if err := k.checkCommitment(ctx, packet); err != nil {
		return err
	}

	return k.verifyUnreceived(ctx, conn, channel, packet, proof, proofHeight, nextSequenceRecv)
}

// TimeoutOnClose is called by a module in order to prove that the channel to
// which an unreceived packet was addressed has been closed, so the packet will
// never be received (even if the timeoutHeight has not yet been reached).
// TimeoutExecuted must be called after the module callback succeeds.
func (k Keeper) TimeoutOnClose(
	ctx ExecutionContext,
	packet Packet,
	proof,
	proofClosed []byte,
	proofHeight client.Height,
	nextSequenceRecv uint64,
) error {
	channel, err := ctx.ChannelEnd(packet.SourcePort, packet.SourceChannel)
	if err != nil {
		return err
	}

	conn, err := k.checkTimeoutTarget(ctx, packet, channel)
	if err != nil {
		return err
	}

	if err := k.checkCommitment(ctx, packet); err != nil {
		return err
	}

	counterpartyHops := []string{conn.Counterparty.ConnectionID}
	counterparty := NewCounterparty(packet.SourcePort, packet.SourceChannel)
	expectedChannel := NewChannel(CLOSED, channel.Ordering, counterparty, counterpartyHops, channel.Version)

	// check that the opposing channel end has closed
	if err := k.connectionKeeper.VerifyChannelState(
		ctx, conn, proofHeight, proofClosed,
		channel.Counterparty.PortID, channel.Counterparty.ChannelID, expectedChannel.Marshal(),
	); err != nil {
		return proofFailure(err, "channel state")
	}

	if err := k.verifyUnreceived(ctx, conn, channel, packet, proof, proofHeight, nextSequenceRecv); err != nil {
		return err
	}

	emitTimeoutOnCloseEvent(ctx, packet, channel)
	return nil
}

// TimeoutExecuted deletes the commitment of a timed out packet. An ordered
// channel is closed, since a lost packet breaks its delivery guarantee.
func (k Keeper) TimeoutExecuted(ctx ExecutionContext, packet Packet) error {
	channel, err := ctx.ChannelEnd(packet.SourcePort, packet.SourceChannel)
	if err != nil {
		return err
	}

	if err := ctx.DeletePacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence); err != nil {
		return err
	}

	if channel.Ordering == ORDERED && channel.State != CLOSED {
		if err := k.closeChannel(ctx, packet.SourcePort, packet.SourceChannel, channel, EventTypeChannelClosed); err != nil {
			return err
		}
		channel.State = CLOSED
	}

	k.logger.Info("packet timed out", "sequence", packet.Sequence, "src-port", packet.SourcePort, "src-channel", packet.SourceChannel, "dst-port", packet.DestinationPort, "dst-channel", packet.DestinationChannel)
	emitTimeoutPacketEvent(ctx, packet, channel)
	return nil
}

// checkTimeoutTarget requires packet to be addressed to the counterparty of
// channel and returns the connection of channel.
func (k Keeper) checkTimeoutTarget(ctx ValidationContext, packet Packet, channel ChannelEnd) (connection.ConnectionEnd, error) {
	if packet.DestinationPort != channel.Counterparty.PortID {
		return connection.ConnectionEnd{}, sdkerrors.Wrapf(ErrInvalidPacket, "packet destination port doesn't match the counterparty's port (%s ≠ %s)", packet.DestinationPort, channel.Counterparty.PortID)
	}
	if packet.DestinationChannel != channel.Counterparty.ChannelID {
		return connection.ConnectionEnd{}, sdkerrors.Wrapf(ErrInvalidPacket, "packet destination channel doesn't match the counterparty's channel (%s ≠ %s)", packet.DestinationChannel, channel.Counterparty.ChannelID)
	}
	if len(channel.ConnectionHops) == 0 {
		return connection.ConnectionEnd{}, sdkerrors.Wrap(ErrInvalidChannel, "channel has no connection hops")
	}
	return ctx.ConnectionEnd(channel.ConnectionHops[0])
}

// verifyUnreceived proves that the counterparty has not received packet. An
// ordered channel proves its next receive sequence is not past the packet,
// an unordered channel proves the absence of a receipt.
func (k Keeper) verifyUnreceived(
	ctx ValidationContext,
	conn connection.ConnectionEnd,
	channel ChannelEnd,
	packet Packet,
	proof []byte,
	proofHeight client.Height,
	nextSequenceRecv uint64,
) error {
	switch channel.Ordering {
	case ORDERED:
		// check that packet has not been received
		if nextSequenceRecv > packet.Sequence {
			return sdkerrors.Wrapf(ErrPacketAlreadyReceived, "packet already received, next sequence receive > packet sequence (%d > %d)", nextSequenceRecv, packet.Sequence)
		}
		if err := k.connectionKeeper.VerifyNextSequenceRecv(
			ctx, conn, proofHeight, proof,
			packet.DestinationPort, packet.DestinationChannel, nextSequenceRecv,
		); err != nil {
			return proofFailure(err, "next sequence receive")
		}
	case UNORDERED:
		if err := k.connectionKeeper.VerifyPacketReceiptAbsence(
			ctx, conn, proofHeight, proof,
			packet.DestinationPort, packet.DestinationChannel, packet.Sequence,
		); err != nil {
			return proofFailure(err, "packet receipt absence")
		}
	default:
		return sdkerrors.Wrap(ErrInvalidChannelOrdering, channel.Ordering.String())
	}
	return nil
}
