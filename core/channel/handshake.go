package channel

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
)

// ChanOpenInit is called by a module to initiate a channel opening handshake
// with a module on another chain. It returns the channel identifier to be
// passed to the module callback and to WriteOpenInitChannel.
func (k Keeper) ChanOpenInit(
	ctx ExecutionContext,
	order Order,
	connectionHops []string,
) (string, error) {
	if len(connectionHops) != 1 {
		return "", sdkerrors.Wrapf(ErrTooManyConnectionHops, "current IBC version only supports one connection hop, got %d", len(connectionHops))
	}
	conn, err := ctx.ConnectionEnd(connectionHops[0])
	if err != nil {
		return "", err
	}

	getVersions := conn.Versions
	if len(getVersions) != 1 {
		return "", sdkerrors.Wrapf(connection.ErrInvalidVersion, "single version must be negotiated on connection before opening channel, got: %v", getVersions)
	}
	if !connection.VerifySupportedFeature(getVersions[0], order.String()) {
		return "", sdkerrors.Wrapf(connection.ErrInvalidVersion, "connection version %v does not support channel ordering: %s", getVersions[0], order)
	}

	if status := k.clientKeeper.Status(ctx, conn.ClientID); status != client.Active {
		return "", sdkerrors.Wrapf(client.ErrClientNotActive, "client (%s) status is %s", conn.ClientID, status)
	}

	return k.generateChannelIdentifier(ctx)
}

// WriteOpenInitChannel stores the channel end in INIT and its sequences.
func (k Keeper) WriteOpenInitChannel(
	ctx ExecutionContext,
	portID,
	channelID string,
	order Order,
	connectionHops []string,
	counterparty Counterparty,
	version string,
) error {
	channel := NewChannel(INIT, order, counterparty, connectionHops, version)
	if err := k.initChannel(ctx, portID, channelID, channel); err != nil {
		return err
	}

	k.logger.Info("channel state updated", "port-id", portID, "channel-id", channelID, "previous-state", UNINITIALIZED.String(), "new-state", INIT.String())
	emitChannelOpenInitEvent(ctx, portID, channelID, channel)
	return nil
}

// ChanOpenTry is called by a module to accept the first step of a channel
// opening handshake initiated by a module on another chain.
func (k Keeper) ChanOpenTry(
	ctx ExecutionContext,
	order Order,
	connectionHops []string,
	portID string,
	counterparty Counterparty,
	counterpartyVersion string,
	proofInit []byte,
	proofHeight client.Height,
) (string, error) {
	conn, err := k.getOpenConnection(ctx, connectionHops)
	if err != nil {
		return "", err
	}

	getVersions := conn.Versions
	if len(getVersions) != 1 {
		return "", sdkerrors.Wrapf(connection.ErrInvalidVersion, "single version must be negotiated on connection before opening channel, got: %v", getVersions)
	}
	if !connection.VerifySupportedFeature(getVersions[0], order.String()) {
		return "", sdkerrors.Wrapf(connection.ErrInvalidVersion, "connection version %v does not support channel ordering: %s", getVersions[0], order)
	}

	counterpartyHops := []string{conn.Counterparty.ConnectionID}

	// expectedCounterparty is the counterparty of the counterparty's channel end
	// (i.e self)
	expectedCounterparty := NewCounterparty(portID, "")
	expectedChannel := NewChannel(INIT, order, expectedCounterparty, counterpartyHops, counterpartyVersion)

	if err := k.connectionKeeper.VerifyChannelState(
		ctx, conn, proofHeight, proofInit,
		counterparty.PortID, counterparty.ChannelID, expectedChannel.Marshal(),
	); err != nil {
		return "", proofFailure(err, "channel state")
	}

	return k.generateChannelIdentifier(ctx)
}

// WriteOpenTryChannel stores the channel end in TRYOPEN with the version
// chosen by the module, and its sequences.
func (k Keeper) WriteOpenTryChannel(
	ctx ExecutionContext,
	portID,
	channelID string,
	order Order,
	connectionHops []string,
	counterparty Counterparty,
	version string,
) error {
	channel := NewChannel(TRYOPEN, order, counterparty, connectionHops, version)
	if err := k.initChannel(ctx, portID, channelID, channel); err != nil {
		return err
	}

	k.logger.Info("channel state updated", "port-id", portID, "channel-id", channelID, "previous-state", UNINITIALIZED.String(), "new-state", TRYOPEN.String())
	emitChannelOpenTryEvent(ctx, portID, channelID, channel)
	return nil
}

// ChanOpenAck is called by the handshake-originating module to acknowledge the
// acceptance of the initial request by the counterparty module on the other chain.
func (k Keeper) ChanOpenAck(
	ctx ExecutionContext,
	portID,
	channelID string,
	counterpartyVersion,
	counterpartyChannelID string,
	proofTry []byte,
	proofHeight client.Height,
) error {
	channel, err := ctx.ChannelEnd(portID, channelID)
	if err != nil {
		return sdkerrors.Wrapf(err, "port ID (%s) channel ID (%s)", portID, channelID)
	}
	if channel.State != INIT {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state should be INIT (got %s)", channel.State)
	}

	conn, err := k.getOpenConnection(ctx, channel.ConnectionHops)
	if err != nil {
		return err
	}

	counterpartyHops := []string{conn.Counterparty.ConnectionID}

	// counterparty of the counterparty channel end (i.e self)
	expectedCounterparty := NewCounterparty(portID, channelID)
	expectedChannel := NewChannel(TRYOPEN, channel.Ordering, expectedCounterparty, counterpartyHops, counterpartyVersion)

	if err := k.connectionKeeper.VerifyChannelState(
		ctx, conn, proofHeight, proofTry,
		channel.Counterparty.PortID, counterpartyChannelID, expectedChannel.Marshal(),
	); err != nil {
		return proofFailure(err, "channel state")
	}
	return nil
}

// WriteOpenAckChannel opens the channel with the version the counterparty chose.
func (k Keeper) WriteOpenAckChannel(
	ctx ExecutionContext,
	portID,
	channelID,
	counterpartyVersion,
	counterpartyChannelID string,
) error {
	channel, err := ctx.ChannelEnd(portID, channelID)
	if err != nil {
		return err
	}

	channel.State = OPEN
	channel.Version = counterpartyVersion
	channel.Counterparty.ChannelID = counterpartyChannelID
	if err := ctx.SetChannel(portID, channelID, channel); err != nil {
		return err
	}

	k.logger.Info("channel state updated", "port-id", portID, "channel-id", channelID, "previous-state", INIT.String(), "new-state", OPEN.String())
	emitChannelOpenAckEvent(ctx, portID, channelID, channel)
	return nil
}

// ChanOpenConfirm is called by the handshake-accepting module to confirm the
// acknowledgement of the handshake-originator on the other chain.
func (k Keeper) ChanOpenConfirm(
	ctx ExecutionContext,
	portID,
	channelID string,
	proofAck []byte,
	proofHeight client.Height,
) error {
	channel, err := ctx.ChannelEnd(portID, channelID)
	if err != nil {
		return sdkerrors.Wrapf(err, "port ID (%s) channel ID (%s)", portID, channelID)
	}
	if channel.State != TRYOPEN {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state is not TRYOPEN (got %s)", channel.State)
	}

	conn, err := k.getOpenConnection(ctx, channel.ConnectionHops)
	if err != nil {
		return err
	}

	counterpartyHops := []string{conn.Counterparty.ConnectionID}

	counterparty := NewCounterparty(portID, channelID)
	expectedChannel := NewChannel(OPEN, channel.Ordering, counterparty, counterpartyHops, channel.Version)

	if err := k.connectionKeeper.VerifyChannelState(
		ctx, conn, proofHeight, proofAck,
		channel.Counterparty.PortID, channel.Counterparty.ChannelID, expectedChannel.Marshal(),
	); err != nil {
		return proofFailure(err, "channel state")
	}
	return nil
}

// WriteOpenConfirmChannel opens the channel.
func (k Keeper) WriteOpenConfirmChannel(ctx ExecutionContext, portID, channelID string) error {
	channel, err := ctx.ChannelEnd(portID, channelID)
	if err != nil {
		return err
	}
	if channel.State != TRYOPEN {
		return sdkerrors.Wrapf(ErrInvalidChannelState, "channel state is not TRYOPEN (got %s)", channel.State)
	}

	channel.State = OPEN
	if err := ctx.SetChannel(portID, channelID, channel); err != nil {
		return err
	}

	k.logger.Info("channel state updated", "port-id", portID, "channel-id", channelID, "previous-state", TRYOPEN.String(), "new-state", OPEN.String())
	emitChannelOpenConfirmEvent(ctx, portID, channelID, channel)
	return nil
}

// ChanCloseInit is called by either module to close their end of the channel.
// Once closed, channels cannot be reopened.
func (k Keeper) ChanCloseInit(ctx ExecutionContext, portID, channelID string) error {
	channel, err := ctx.ChannelEnd(portID, channelID)
	if err != nil {
		return sdkerrors.Wrapf(err, "port ID (%s) channel ID (%s)", portID, channelID)
	}
	if channel.State == CLOSED {
		return sdkerrors.Wrap(ErrInvalidChannelState, "channel is already CLOSED")
	}

	conn, err := k.getOpenConnection(ctx, channel.ConnectionHops)
	if err != nil {
		return err
	}
	if status := k.clientKeeper.Status(ctx, conn.ClientID); status != client.Active {
		return sdkerrors.Wrapf(client.ErrClientNotActive, "client (%s) status is %s", conn.ClientID, status)
	}

	return k.closeChannel(ctx, portID, channelID, channel, EventTypeChannelCloseInit)
}

// ChanCloseConfirm is called by the counterparty module to close their end of
// the channel, since the other end has been closed.
func (k Keeper) ChanCloseConfirm(
	ctx ExecutionContext,
	portID,
	channelID string,
	proofInit []byte,
	proofHeight client.Height,
) error {
	channel, err := ctx.ChannelEnd(portID, channelID)
	if err != nil {
		return sdkerrors.Wrapf(err, "port ID (%s) channel ID (%s)", portID, channelID)
	}
	if channel.State == CLOSED {
		return sdkerrors.Wrap(ErrInvalidChannelState, "channel is already CLOSED")
	}

	conn, err := k.getOpenConnection(ctx, channel.ConnectionHops)
	if err != nil {
		return err
	}

	counterpartyHops := []string{conn.Counterparty.ConnectionID}

	counterparty := NewCounterparty(portID, channelID)
	expectedChannel := NewChannel(CLOSED, channel.Ordering, counterparty, counterpartyHops, channel.Version)

	if err := k.connectionKeeper.VerifyChannelState(
		ctx, conn, proofHeight, proofInit,
		channel.Counterparty.PortID, channel.Counterparty.ChannelID, expectedChannel.Marshal(),
	); err != nil {
		return proofFailure(err, "channel state")
	}

	return k.closeChannel(ctx, portID, channelID, channel, EventTypeChannelCloseConfirm)
}

func (k Keeper) initChannel(ctx ExecutionContext, portID, channelID string, channel ChannelEnd) error {
	if _, err := ctx.ChannelEnd(portID, channelID); err == nil {
		return sdkerrors.Wrapf(ErrChannelExists, "port ID (%s) channel ID (%s)", portID, channelID)
	}
	if err := ctx.SetChannel(portID, channelID, channel); err != nil {
		return err
	}
	if err := ctx.SetNextSequenceSend(portID, channelID, 1); err != nil {
		return err
	}
	if err := ctx.SetNextSequenceRecv(portID, channelID, 1); err != nil {
		return err
	}
	return ctx.SetNextSequenceAck(portID, channelID, 1)
}

func (k Keeper) closeChannel(ctx ExecutionContext, portID, channelID string, channel ChannelEnd, eventType string) error {
	previous := channel.State
	channel.State = CLOSED
	if err := ctx.SetChannel(portID, channelID, channel); err != nil {
		return err
	}

	k.logger.Info("channel state updated", "port-id", portID, "channel-id", channelID, "previous-state", previous.String(), "new-state", CLOSED.String())
	emitChannelClosedEvent(ctx, eventType, portID, channelID, channel)
	return nil
}
