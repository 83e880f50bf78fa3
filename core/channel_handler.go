package core

import (
	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
)

func (d *Dispatcher) channelOpenInit(ctx ExecutionContext, msg *channel.MsgChannelOpenInit) (string, error) {
	module, err := d.router.Route(msg.PortID)
	if err != nil {
		return "", err
	}

	channelID, err := d.ChannelKeeper.ChanOpenInit(ctx, msg.Channel.Ordering, msg.Channel.ConnectionHops)
	if err != nil {
		return "", err
	}

	version, err := module.OnChanOpenInit(ctx, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.PortID, channelID, msg.Channel.Counterparty, msg.Channel.Version)
	if err != nil {
		return "", callbackError(msg.PortID, "OnChanOpenInit", err)
	}

	if err := d.ChannelKeeper.WriteOpenInitChannel(ctx, msg.PortID, channelID, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.Channel.Counterparty, version); err != nil {
		return "", err
	}
	return channelID, nil
}

func (d *Dispatcher) channelOpenTry(ctx ExecutionContext, msg *channel.MsgChannelOpenTry) (string, error) {
	module, err := d.router.Route(msg.PortID)
	if err != nil {
		return "", err
	}

	channelID, err := d.ChannelKeeper.ChanOpenTry(
		ctx, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.PortID,
		msg.Channel.Counterparty, msg.CounterpartyVersion, msg.ProofInit, msg.ProofHeight,
	)
	if err != nil {
		return "", err
	}

	version, err := module.OnChanOpenTry(ctx, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.PortID, channelID, msg.Channel.Counterparty, msg.CounterpartyVersion)
	if err != nil {
		return "", callbackError(msg.PortID, "OnChanOpenTry", err)
	}

	if err := d.ChannelKeeper.WriteOpenTryChannel(ctx, msg.PortID, channelID, msg.Channel.Ordering, msg.Channel.ConnectionHops, msg.Channel.Counterparty, version); err != nil {
		return "", err
	}
	return channelID, nil
}

func (d *Dispatcher) channelOpenAck(ctx ExecutionContext, msg *channel.MsgChannelOpenAck) error {
	module, err := d.router.Route(msg.PortID)
	if err != nil {
		return err
	}

	if err := d.ChannelKeeper.ChanOpenAck(ctx, msg.PortID, msg.ChannelID, msg.CounterpartyVersion, msg.CounterpartyChannelID, msg.ProofTry, msg.ProofHeight); err != nil {
		return err
	}

	if err := module.OnChanOpenAck(ctx, msg.PortID, msg.ChannelID, msg.CounterpartyChannelID, msg.CounterpartyVersion); err != nil {
		return callbackError(msg.PortID, "OnChanOpenAck", err)
	}

	return d.ChannelKeeper.WriteOpenAckChannel(ctx, msg.PortID, msg.ChannelID, msg.CounterpartyVersion, msg.CounterpartyChannelID)
}

func (d *Dispatcher) channelOpenConfirm(ctx ExecutionContext, msg *channel.MsgChannelOpenConfirm) error {
	module, err := d.router.Route(msg.PortID)
	if err != nil {
		return err
	}

	if err := d.ChannelKeeper.ChanOpenConfirm(ctx, msg.PortID, msg.ChannelID, msg.ProofAck, msg.ProofHeight); err != nil {
		return err
	}

	if err := module.OnChanOpenConfirm(ctx, msg.PortID, msg.ChannelID); err != nil {
		return callbackError(msg.PortID, "OnChanOpenConfirm", err)
	}

	return d.ChannelKeeper.WriteOpenConfirmChannel(ctx, msg.PortID, msg.ChannelID)
}

func (d *Dispatcher) channelCloseInit(ctx ExecutionContext, msg *channel.MsgChannelCloseInit) error {
	module, err := d.router.Route(msg.PortID)
	if err != nil {
		return err
	}

	if err := module.OnChanCloseInit(ctx, msg.PortID, msg.ChannelID); err != nil {
		return callbackError(msg.PortID, "OnChanCloseInit", err)
	}

	return d.ChannelKeeper.ChanCloseInit(ctx, msg.PortID, msg.ChannelID)
}

func (d *Dispatcher) channelCloseConfirm(ctx ExecutionContext, msg *channel.MsgChannelCloseConfirm) error {
	module, err := d.router.Route(msg.PortID)
	if err != nil {
		return err
	}

	if err := d.ChannelKeeper.ChanCloseConfirm(ctx, msg.PortID, msg.ChannelID, msg.ProofInit, msg.ProofHeight); err != nil {
		return err
	}

	if err := module.OnChanCloseConfirm(ctx, msg.PortID, msg.ChannelID); err != nil {
		return callbackError(msg.PortID, "OnChanCloseConfirm", err)
	}
	return nil
}
