package core

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// recvPacket returns the acknowledgement bytes written for the packet, or
// nil when the module acknowledges asynchronously.
func (d *Dispatcher) recvPacket(ctx ExecutionContext, msg *channel.MsgRecvPacket) ([]byte, error) {
	module, err := d.router.Route(msg.Packet.DestinationPort)
	if err != nil {
		return nil, err
	}

	if err := d.ChannelKeeper.RecvPacket(ctx, msg.Packet, msg.ProofCommitment, msg.ProofHeight); err != nil {
		return nil, sdkerrors.Wrap(err, "receive packet verification failed")
	}

	// the module state of a failed acknowledgement is discarded, the
	// acknowledgement itself is still written
	moduleCtx, writeModule := ctx.CacheContext()
	ack, err := module.OnRecvPacket(moduleCtx, msg.Packet, msg.Signer)
	if err != nil {
		return nil, callbackError(msg.Packet.DestinationPort, "OnRecvPacket", err)
	}
	if channel.IsNilAcknowledgement(ack) {
		writeModule()
		return nil, nil
	}
	if ack.Success() {
		writeModule()
	}

	if err := d.ChannelKeeper.WriteAcknowledgement(ctx, msg.Packet, ack); err != nil {
		return nil, err
	}
	return ack.Acknowledgement(), nil
}

func (d *Dispatcher) acknowledgement(ctx ExecutionContext, msg *channel.MsgAcknowledgement) error {
	module, err := d.router.Route(msg.Packet.SourcePort)
	if err != nil {
		return err
	}

	if err := d.ChannelKeeper.AcknowledgePacket(ctx, msg.Packet, msg.Acknowledgement, msg.ProofAcked, msg.ProofHeight); err != nil {
		return sdkerrors.Wrap(err, "acknowledge packet verification failed")
	}

	if err := module.OnAcknowledgementPacket(ctx, msg.Packet, msg.Acknowledgement, msg.Signer); err != nil {
		return callbackError(msg.Packet.SourcePort, "OnAcknowledgementPacket", err)
	}
	return nil
}

func (d *Dispatcher) timeout(ctx ExecutionContext, msg *channel.MsgTimeout) error {
	module, err := d.router.Route(msg.Packet.SourcePort)
	if err != nil {
		return err
	}

	if err := d.ChannelKeeper.TimeoutPacket(ctx, msg.Packet, msg.ProofUnreceived, msg.ProofHeight, msg.NextSequenceRecv); err != nil {
		return sdkerrors.Wrap(err, "timeout packet verification failed")
	}

	if err := module.OnTimeoutPacket(ctx, msg.Packet, msg.Signer); err != nil {
		return callbackError(msg.Packet.SourcePort, "OnTimeoutPacket", err)
	}

	return d.ChannelKeeper.TimeoutExecuted(ctx, msg.Packet)
}

func (d *Dispatcher) timeoutOnClose(ctx ExecutionContext, msg *channel.MsgTimeoutOnClose) error {
	module, err := d.router.Route(msg.Packet.SourcePort)
	if err != nil {
		return err
	}

	if err := d.ChannelKeeper.TimeoutOnClose(ctx, msg.Packet, msg.ProofUnreceived, msg.ProofClose, msg.ProofHeight, msg.NextSequenceRecv); err != nil {
		return sdkerrors.Wrap(err, "timeout on close packet verification failed")
	}

	if err := module.OnTimeoutPacket(ctx, msg.Packet, msg.Signer); err != nil {
		return callbackError(msg.Packet.SourcePort, "OnTimeoutPacket", err)
	}

	return d.ChannelKeeper.TimeoutExecuted(ctx, msg.Packet)
}

// SendPacket commits a packet sent by the module bound to sourcePort and
// returns its sequence.
func (d *Dispatcher) SendPacket(
	ctx ExecutionContext,
	sourcePort string,
	sourceChannel string,
	timeoutHeight client.Height,
	timeoutTimestamp uint64,
	data []byte,
) (uint64, error) {
	if _, err := d.router.Route(sourcePort); err != nil {
		return 0, err
	}

	cacheCtx, commit := ctx.CacheContext()
	sequence, err := d.ChannelKeeper.SendPacket(cacheCtx, sourcePort, sourceChannel, timeoutHeight, timeoutTimestamp, data)
	if err != nil {
		d.logger.Debug("send packet rejected", "port-id", sourcePort, "channel-id", sourceChannel, "kind", Classify(err).String(), "err", err)
		return 0, err
	}
	commit()
	return sequence, nil
}

// WriteAcknowledgement commits the acknowledgement a module produces
// asynchronously for a received packet.
func (d *Dispatcher) WriteAcknowledgement(ctx ExecutionContext, packet channel.Packet, ack channel.AcknowledgementI) error {
	if _, err := d.router.Route(packet.DestinationPort); err != nil {
		return err
	}

	cacheCtx, commit := ctx.CacheContext()
	if err := d.ChannelKeeper.WriteAcknowledgement(cacheCtx, packet, ack); err != nil {
		return err
	}
	commit()
	return nil
}

// RecoverClient replaces the frozen or expired client subjectID with the
// state of substituteID. It is triggered by the host, not by a relayer.
func (d *Dispatcher) RecoverClient(ctx ExecutionContext, subjectID, substituteID string) error {
	cacheCtx, commit := ctx.CacheContext()
	if err := d.ClientKeeper.RecoverClient(cacheCtx, subjectID, substituteID); err != nil {
		return err
	}
	commit()
	return nil
}
