package channel

import (
	"errors"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// Keeper implements the channel handshake and the packet lifecycle. It never
// calls into applications: the caller runs the module callbacks between the
// validating step and the matching Write step of each transition.
type Keeper struct {
	clientKeeper     client.Keeper
	connectionKeeper connection.Keeper
	logger           log.Logger
}

func NewKeeper(clientKeeper client.Keeper, connectionKeeper connection.Keeper, logger log.Logger) Keeper {
	return Keeper{
		clientKeeper:     clientKeeper,
		connectionKeeper: connectionKeeper,
		logger:           logger.With("module", "ibc/"+SubModuleName),
	}
}

// GetChannel returns the channel end of portID and channelID.
func (k Keeper) GetChannel(ctx ValidationContext, portID, channelID string) (ChannelEnd, error) {
	return ctx.ChannelEnd(portID, channelID)
}

// GetChannelConnection returns the connection the channel is built on.
func (k Keeper) GetChannelConnection(ctx ValidationContext, portID, channelID string) (string, connection.ConnectionEnd, error) {
	channel, err := ctx.ChannelEnd(portID, channelID)
	if err != nil {
		return "", connection.ConnectionEnd{}, err
	}
	if len(channel.ConnectionHops) == 0 {
		return "", connection.ConnectionEnd{}, sdkerrors.Wrapf(ErrInvalidChannel, "channel %s/%s has no connection hops", portID, channelID)
	}
	connectionID := channel.ConnectionHops[0]
	conn, err := ctx.ConnectionEnd(connectionID)
	if err != nil {
		return "", connection.ConnectionEnd{}, err
	}
	return connectionID, conn, nil
}

// GetChannelClientState returns the client state the channel's connection is built on.
func (k Keeper) GetChannelClientState(ctx ValidationContext, portID, channelID string) (string, client.ClientState, error) {
	_, conn, err := k.GetChannelConnection(ctx, portID, channelID)
	if err != nil {
		return "", nil, err
	}
	clientState, err := ctx.ClientState(conn.ClientID)
	if err != nil {
		return "", nil, err
	}
	return conn.ClientID, clientState, nil
}

// getOpenConnection returns the first hop of channel, which must be OPEN.
func (k Keeper) getOpenConnection(ctx ValidationContext, hops []string) (connection.ConnectionEnd, error) {
	if len(hops) != 1 {
		return connection.ConnectionEnd{}, sdkerrors.Wrapf(ErrTooManyConnectionHops, "current IBC version only supports one connection hop, got %d", len(hops))
	}
	conn, err := ctx.ConnectionEnd(hops[0])
	if err != nil {
		return connection.ConnectionEnd{}, err
	}
	if conn.State != connection.OPEN {
		return connection.ConnectionEnd{}, sdkerrors.Wrapf(connection.ErrConnectionStateMismatch, "connection state is not OPEN (got %s)", conn.State)
	}
	return conn, nil
}

// timestampAtHeight returns the counterparty time and height of the consensus
// state used for proofs at height.
func (k Keeper) timestampAtHeight(ctx ValidationContext, conn connection.ConnectionEnd, height client.Height) (uint64, client.Height, error) {
	return k.clientKeeper.TimestampAtHeight(ctx, conn.ClientID, height)
}

func (k Keeper) generateChannelIdentifier(ctx ExecutionContext) (string, error) {
	sequence, err := ctx.ChannelCounter()
	if err != nil {
		return "", err
	}
	channelID := host.FormatChannelIdentifier(sequence)
	if err := ctx.IncreaseChannelCounter(); err != nil {
		return "", err
	}
	return channelID, nil
}

// proofFailure reports a rejected commitment proof as a channel proof
// failure. Client faults such as a frozen client are returned as they are.
func proofFailure(err error, what string) error {
	if !errors.Is(err, commitment.ErrVerificationFailure) {
		return err
	}
	return sdkerrors.Wrapf(ErrChannelProofVerificationFailed, "%s: %v", what, err)
}
