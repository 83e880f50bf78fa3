package core

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
	"github.com/hyperledger-labs/yui-ibc-core/core/port"
)

// Msg is a datagram submitted by a relayer.
type Msg interface {
	Type() string
	GetSigner() string
	ValidateBasic() error
}

// Dispatcher routes datagrams to the client, connection and channel keepers
// and runs the module callbacks of the port a channel datagram targets. Every
// datagram executes on a branch of the host context, which is committed only
// when the keeper operation and the module callback both succeed.
type Dispatcher struct {
	ClientKeeper     client.Keeper
	ConnectionKeeper connection.Keeper
	ChannelKeeper    channel.Keeper

	router *port.Router
	logger log.Logger
}

// NewDispatcher creates the keepers and seals router.
func NewDispatcher(
	clientParams client.Params,
	connectionParams connection.Params,
	router *port.Router,
	logger log.Logger,
) *Dispatcher {
	clientKeeper := client.NewKeeper(clientParams, logger)
	connectionKeeper := connection.NewKeeper(connectionParams, clientKeeper, logger)
	channelKeeper := channel.NewKeeper(clientKeeper, connectionKeeper, logger)

	if !router.Sealed() {
		router.Seal()
	}

	return &Dispatcher{
		ClientKeeper:     clientKeeper,
		ConnectionKeeper: connectionKeeper,
		ChannelKeeper:    channelKeeper,
		router:           router,
		logger:           logger.With("module", "ibc/"+ModuleName),
	}
}

// Router returns the sealed port router.
func (d *Dispatcher) Router() *port.Router {
	return d.router
}

// Deliver validates and executes msg. On success the state changes of msg
// are committed to ctx and its events are returned in the result. On failure
// ctx is left untouched.
func (d *Dispatcher) Deliver(ctx ExecutionContext, msg Msg) (*sdk.Result, error) {
	if msg == nil {
		return nil, sdkerrors.Wrap(ErrInvalidDatagram, "datagram cannot be nil")
	}
	if err := msg.ValidateBasic(); err != nil {
		d.logger.Debug("datagram rejected", "type", msg.Type(), "kind", Classify(err).String(), "err", err)
		return nil, err
	}
	return d.execute(ctx, msg)
}

func (d *Dispatcher) execute(ctx ExecutionContext, msg Msg) (*sdk.Result, error) {
	cacheCtx, commit := ctx.CacheContext()
	data, err := d.handle(cacheCtx, msg)
	if err != nil {
		d.logger.Debug("datagram rejected", "type", msg.Type(), "kind", Classify(err).String(), "err", err)
		return nil, err
	}
	events := cacheCtx.Events()
	commit()
	d.logger.Debug("datagram executed", "type", msg.Type(), "signer", msg.GetSigner(), "events", len(events))
	return &sdk.Result{Data: data, Events: events.ToABCIEvents()}, nil
}

func (d *Dispatcher) handle(ctx ExecutionContext, msg Msg) ([]byte, error) {
	switch msg := msg.(type) {
	case *client.MsgCreateClient:
		clientID, err := d.ClientKeeper.CreateClient(ctx, msg.ClientState, msg.ConsensusState)
		return []byte(clientID), err
	case *client.MsgUpdateClient:
		return nil, d.ClientKeeper.UpdateClient(ctx, msg.ClientID, msg.ClientMessage)
	case *client.MsgSubmitMisbehaviour:
		return nil, d.ClientKeeper.SubmitMisbehaviour(ctx, msg.ClientID, msg.Misbehaviour)

	case *connection.MsgConnectionOpenInit:
		connectionID, err := d.ConnectionKeeper.ConnOpenInit(ctx, msg.ClientID, msg.Counterparty, msg.Version, msg.DelayPeriod)
		return []byte(connectionID), err
	case *connection.MsgConnectionOpenTry:
		connectionID, err := d.ConnectionKeeper.ConnOpenTry(
			ctx, msg.Counterparty, msg.DelayPeriod, msg.ClientID, msg.ClientState,
			msg.CounterpartyVersions, msg.ProofInit, msg.ProofClient, msg.ProofConsensus,
			msg.ProofHeight, msg.ConsensusHeight,
		)
		return []byte(connectionID), err
	case *connection.MsgConnectionOpenAck:
		return nil, d.ConnectionKeeper.ConnOpenAck(
			ctx, msg.ConnectionID, msg.ClientState, *msg.Version, msg.CounterpartyConnectionID,
			msg.ProofTry, msg.ProofClient, msg.ProofConsensus,
			msg.ProofHeight, msg.ConsensusHeight,
		)
	case *connection.MsgConnectionOpenConfirm:
		return nil, d.ConnectionKeeper.ConnOpenConfirm(ctx, msg.ConnectionID, msg.ProofAck, msg.ProofHeight)

	case *channel.MsgChannelOpenInit:
		channelID, err := d.channelOpenInit(ctx, msg)
		return []byte(channelID), err
	case *channel.MsgChannelOpenTry:
		channelID, err := d.channelOpenTry(ctx, msg)
		return []byte(channelID), err
	case *channel.MsgChannelOpenAck:
		return nil, d.channelOpenAck(ctx, msg)
	case *channel.MsgChannelOpenConfirm:
		return nil, d.channelOpenConfirm(ctx, msg)
	case *channel.MsgChannelCloseInit:
		return nil, d.channelCloseInit(ctx, msg)
	case *channel.MsgChannelCloseConfirm:
		return nil, d.channelCloseConfirm(ctx, msg)

	case *channel.MsgRecvPacket:
		return d.recvPacket(ctx, msg)
	case *channel.MsgAcknowledgement:
		return nil, d.acknowledgement(ctx, msg)
	case *channel.MsgTimeout:
		return nil, d.timeout(ctx, msg)
	case *channel.MsgTimeoutOnClose:
		return nil, d.timeoutOnClose(ctx, msg)

	default:
		return nil, sdkerrors.Wrapf(ErrUnknownDatagram, "unrecognized IBC datagram type: %T", msg)
	}
}
