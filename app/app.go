package app

import (
	"context"
	"io"
	"strconv"

	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/gogo/protobuf/proto"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/crypto/ed25519"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/config"
	"github.com/hyperledger-labs/yui-ibc-core/core"
	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/keeper"
	"github.com/hyperledger-labs/yui-ibc-core/core/port"
	attested "github.com/hyperledger-labs/yui-ibc-core/light-clients/attested/types"
)

const (
	// ModulesStoreKey names the committed store holding the private state of
	// the application modules.
	ModulesStoreKey = "modules"
	// IndexStoreKey names the memory store holding the packet index.
	IndexStoreKey = "index"
	// QueryRoute routes custom queries of the packet index.
	QueryRoute = "ibc"
)

// Option configures an App before its stores are loaded.
type Option func(app *App)

// SelfClientProvider builds the description of the host chain from its
// committed blocks.
type SelfClientProvider func(history attested.BlockHistory) keeper.SelfClient

// AttestedSelfClient describes a host whose headers are attested by pubKey.
func AttestedSelfClient(chainID string, pubKey ed25519.PubKey) SelfClientProvider {
	return func(history attested.BlockHistory) keeper.SelfClient {
		return attested.SelfClient{ChainID: chainID, PubKey: pubKey, History: history}
	}
}

// WithSelfClient sets how counterparties' clients of this chain are checked
// during the connection handshake.
func WithSelfClient(provider SelfClientProvider) Option {
	return func(app *App) { app.selfClient = provider(app.BaseApp) }
}

// WithClientCodecs registers light client types in addition to the attested client.
func WithClientCodecs(codecs ...client.Codec) Option {
	return func(app *App) {
		for _, c := range codecs {
			app.registry.Register(c)
		}
	}
}

// WithEventHandlers replaces the default packet index handlers.
func WithEventHandlers(handlers ...keeper.EventHandler) Option {
	return func(app *App) { app.eventHandler = keeper.NewMultiEventHandler(handlers...) }
}

// App is a host chain running the IBC core. Datagrams are executed on a
// cache of the multistore that is written back only when they succeed.
type App struct {
	*BaseApp

	// keys to access the substores
	keys    map[string]*sdk.KVStoreKey
	memKeys map[string]*sdk.MemoryStoreKey
	ibcKey  *sdk.KVStoreKey

	prefix       commitment.Prefix
	registry     *client.Registry
	dispatcher   *core.Dispatcher
	eventHandler keeper.MultiEventHandler
	selfClient   keeper.SelfClient
}

func NewApp(cfg config.Config, logger log.Logger, db dbm.DB, traceStore io.Writer, router *port.Router, options ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bApp := NewBaseApp(cfg.Host.ChainID, logger, db)
	bApp.SetTracer(traceStore)

	app := &App{
		BaseApp:      bApp,
		keys:         sdk.NewKVStoreKeys(cfg.Host.StoreKey, ModulesStoreKey),
		memKeys:      sdk.NewMemoryStoreKeys(IndexStoreKey),
		prefix:       commitment.NewPrefix([]byte(cfg.Host.StoreKey)),
		registry:     client.NewRegistry(attested.Codec{}),
		eventHandler: keeper.DefaultMultiEventHandler(),
	}
	app.ibcKey = app.keys[cfg.Host.StoreKey]
	for _, option := range options {
		option(app)
	}
	app.dispatcher = core.NewDispatcher(cfg.Client.Params(), cfg.Connection.Params(), router, logger)
	app.SetQuerier(QueryRoute, app.queryIndex)

	// initialize stores
	app.MountKVStores(app.keys)
	app.MountMemoryStores(app.memKeys)
	if err := app.LoadLatestVersion(cfg.Store.PruningOptions()); err != nil {
		return nil, err
	}
	app.Seal()
	return app, nil
}

// Dispatcher returns the dispatcher datagrams are delivered to.
func (app *App) Dispatcher() *core.Dispatcher {
	return app.dispatcher
}

// CommitmentPrefix returns the prefix counterparties verify proofs of this chain under.
func (app *App) CommitmentPrefix() commitment.Prefix {
	return app.prefix
}

// StoreKey returns the key of the committed IBC store.
func (app *App) StoreKey() *sdk.KVStoreKey {
	return app.ibcKey
}

func (app *App) newContext(ms storetypes.MultiStore) *keeper.Context {
	return keeper.NewContext(
		ms.GetKVStore(app.StoreKey()),
		ms.GetKVStore(app.keys[ModulesStoreKey]),
		app.header,
		app.registry,
		app.selfClient,
	).WithCommitmentPrefix(app.prefix)
}

// QueryContext returns a context over the state of the open block, or of the
// last committed block between blocks. Its writes are discarded.
func (app *App) QueryContext() *keeper.Context {
	return app.newContext(app.cms.CacheMultiStore())
}

// RunTx executes msgs as one transaction: either all of them succeed and are
// written to the open block, or none is.
func (app *App) RunTx(msgs ...core.Msg) (*sdk.Result, error) {
	if err := validateBasicTxMsgs(msgs); err != nil {
		return nil, err
	}

	ms := app.cacheTxContext(msgs[0].Type())
	ctx := app.newContext(ms)

	txMsgData := &sdk.TxMsgData{
		Data: make([]*sdk.MsgData, 0, len(msgs)),
	}
	var abciEvents []abci.Event
	for i, msg := range msgs {
		res, err := app.dispatcher.Deliver(ctx, msg)
		if err != nil {
			return nil, sdkerrors.Wrapf(err, "failed to execute message; message index: %d", i)
		}
		abciEvents = append(abciEvents, res.Events...)
		txMsgData.Data = append(txMsgData.Data, &sdk.MsgData{MsgType: msg.Type(), Data: res.Data})
	}

	if err := app.eventHandler.Handle(ms.GetKVStore(app.memKeys[IndexStoreKey]), abciEvents); err != nil {
		return nil, sdkerrors.Wrap(err, "failed to handle events")
	}

	data, err := proto.Marshal(txMsgData)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "failed to marshal tx data")
	}

	// commit
	ms.Write()
	return &sdk.Result{Data: data, Events: abciEvents}, nil
}

// DeliverBatch executes msgs in order, each committing or rolling back on its
// own. See core.Dispatcher.DeliverBatch.
func (app *App) DeliverBatch(goCtx context.Context, msgs []core.Msg) ([]*sdk.Result, error) {
	ms := app.cacheTxContext("batch")
	results, batchErr := app.dispatcher.DeliverBatch(goCtx, app.newContext(ms), msgs)

	indexStore := ms.GetKVStore(app.memKeys[IndexStoreKey])
	for _, res := range results {
		if res == nil {
			continue
		}
		if err := app.eventHandler.Handle(indexStore, res.Events); err != nil {
			return nil, sdkerrors.Wrap(err, "failed to handle events")
		}
	}
	ms.Write()
	return results, batchErr
}

// SendPacket sends a packet on behalf of the module bound to sourcePort and
// returns its sequence.
func (app *App) SendPacket(
	sourcePort, sourceChannel string,
	timeoutHeight client.Height,
	timeoutTimestamp uint64,
	data []byte,
) (uint64, error) {
	var sequence uint64
	err := app.runLocal(channel.EventTypeSendPacket, func(ctx *keeper.Context) (err error) {
		sequence, err = app.dispatcher.SendPacket(ctx, sourcePort, sourceChannel, timeoutHeight, timeoutTimestamp, data)
		return err
	})
	return sequence, err
}

// WriteAcknowledgement writes the asynchronous acknowledgement of a received packet.
func (app *App) WriteAcknowledgement(packet channel.Packet, ack channel.AcknowledgementI) error {
	return app.runLocal(channel.EventTypeWriteAck, func(ctx *keeper.Context) error {
		return app.dispatcher.WriteAcknowledgement(ctx, packet, ack)
	})
}

// RecoverClient replaces the state of a frozen or expired client with the
// state of substituteID.
func (app *App) RecoverClient(subjectID, substituteID string) error {
	return app.runLocal("recover_client", func(ctx *keeper.Context) error {
		return app.dispatcher.RecoverClient(ctx, subjectID, substituteID)
	})
}

// runLocal runs an operation the host itself triggers, outside of any datagram.
func (app *App) runLocal(txType string, fn func(ctx *keeper.Context) error) error {
	ms := app.cacheTxContext(txType)
	ctx := app.newContext(ms)
	if err := fn(ctx); err != nil {
		return err
	}
	if err := app.eventHandler.Handle(ms.GetKVStore(app.memKeys[IndexStoreKey]), ctx.Events().ToABCIEvents()); err != nil {
		return sdkerrors.Wrap(err, "failed to handle events")
	}
	ms.Write()
	return nil
}

// queryIndex answers "custom/ibc/packet/{port}/{channel}/{sequence}" and
// "custom/ibc/ack/{port}/{channel}/{sequence}" from the packet index.
func (app *App) queryIndex(ms storetypes.MultiStore, path []string, _ abci.RequestQuery) ([]byte, error) {
	if len(path) != 4 {
		return nil, sdkerrors.Wrapf(sdkerrors.ErrUnknownRequest, "invalid query path %v", path)
	}
	sequence, err := strconv.ParseUint(path[3], 10, 64)
	if err != nil {
		return nil, sdkerrors.Wrapf(sdkerrors.ErrInvalidSequence, "invalid sequence %s", path[3])
	}
	indexStore := ms.GetKVStore(app.memKeys[IndexStoreKey])
	switch path[0] {
	case "packet":
		packet, err := keeper.QueryPacket(indexStore, path[1], path[2], sequence)
		if err != nil {
			return nil, err
		}
		return packet.Marshal(), nil
	case "ack":
		return keeper.QueryPacketAcknowledgement(indexStore, path[1], path[2], sequence)
	}
	return nil, sdkerrors.Wrapf(sdkerrors.ErrUnknownRequest, "unknown index query %s", path[0])
}

// validateBasicTxMsgs executes basic validator calls for messages.
func validateBasicTxMsgs(msgs []core.Msg) error {
	if len(msgs) == 0 {
		return sdkerrors.Wrap(sdkerrors.ErrInvalidRequest, "must contain at least one message")
	}

	for _, msg := range msgs {
		if msg == nil {
			return sdkerrors.Wrap(core.ErrInvalidDatagram, "datagram cannot be nil")
		}
		if err := msg.ValidateBasic(); err != nil {
			return err
		}
	}

	return nil
}
