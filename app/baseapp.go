package app

import (
	"fmt"
	"io"
	"time"

	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/keeper"
	"github.com/hyperledger-labs/yui-ibc-core/store"
)

type blockInfo struct {
	time    time.Time
	appHash []byte
}

// BaseApp holds the commit multistore of a host chain and drives its blocks.
// Every block is opened with BeginBlock and closed with Commit; the app hash
// of the committed version is the state root counterparties track.
type BaseApp struct {
	logger   log.Logger
	chainID  string
	revision uint64
	db       dbm.DB
	cms      *store.Store

	header  keeper.Header
	inBlock bool
	history map[uint64]blockInfo

	queriers map[string]Querier

	// flag for sealing options and parameters to a BaseApp
	sealed bool
}

func NewBaseApp(chainID string, logger log.Logger, db dbm.DB) *BaseApp {
	return &BaseApp{
		logger:   logger,
		chainID:  chainID,
		revision: client.ParseChainID(chainID),
		db:       db,
		cms:      store.NewStore(db),
		history:  make(map[uint64]blockInfo),
	}
}

// ChainID returns the chain id of the BaseApp.
func (app *BaseApp) ChainID() string {
	return app.chainID
}

// Logger returns the logger of the BaseApp.
func (app *BaseApp) Logger() log.Logger {
	return app.logger
}

// Seal seals a BaseApp. It prohibits any further modifications to a BaseApp.
func (app *BaseApp) Seal() { app.sealed = true }

// IsSealed returns true if the BaseApp is sealed and false otherwise.
func (app *BaseApp) IsSealed() bool { return app.sealed }

// MountKVStores mounts committed stores to the provided keys in the BaseApp
// multistore.
func (app *BaseApp) MountKVStores(keys map[string]*sdk.KVStoreKey) {
	for _, key := range keys {
		app.MountStore(key, sdk.StoreTypeDB)
	}
}

// MountMemoryStores mounts all in-memory KVStores with the BaseApp's internal
// commit multi-store.
func (app *BaseApp) MountMemoryStores(keys map[string]*sdk.MemoryStoreKey) {
	for _, memKey := range keys {
		app.MountStore(memKey, sdk.StoreTypeMemory)
	}
}

// MountStore mounts a store to the provided key in the BaseApp multistore,
// using the default DB.
func (app *BaseApp) MountStore(key sdk.StoreKey, typ sdk.StoreType) {
	if app.sealed {
		panic("MountStore() on sealed BaseApp")
	}
	app.cms.MountStoreWithDB(key, typ, nil)
}

// SetTracer traces every store operation to w.
func (app *BaseApp) SetTracer(w io.Writer) {
	if w != nil {
		app.cms.SetTracer(w)
	}
}

func (app *BaseApp) LoadLatestVersion(pruning storetypes.PruningOptions) error {
	if err := app.cms.LoadStores(); err != nil {
		return err
	}
	app.cms.SetPruning(pruning)
	return nil
}

// LastBlockHeight returns the height of the last committed block.
func (app *BaseApp) LastBlockHeight() int64 {
	return app.cms.LastCommitID().Version
}

// LastCommitID returns the version and the app hash of the last committed block.
func (app *BaseApp) LastCommitID() storetypes.CommitID {
	return app.cms.LastCommitID()
}

// BeginBlock opens the block following the last committed one.
func (app *BaseApp) BeginBlock(timestamp time.Time) keeper.Header {
	if app.inBlock {
		panic(fmt.Sprintf("BeginBlock() while block %s is open", app.header.Height))
	}
	app.header = keeper.Header{
		ChainID: app.chainID,
		Height:  client.NewHeight(app.revision, uint64(app.LastBlockHeight())+1),
		Time:    timestamp,
	}
	app.inBlock = true
	return app.header
}

// Header returns the header of the open block.
func (app *BaseApp) Header() keeper.Header {
	return app.header
}

// Commit closes the open block and returns its version and app hash.
func (app *BaseApp) Commit() storetypes.CommitID {
	if !app.inBlock {
		panic("Commit() without BeginBlock()")
	}
	id := app.cms.Commit()
	if uint64(id.Version) != app.header.Height.RevisionHeight {
		panic(fmt.Sprintf("committed version %d, expected %s", id.Version, app.header.Height))
	}
	app.history[uint64(id.Version)] = blockInfo{time: app.header.Time, appHash: id.Hash}
	app.inBlock = false
	app.logger.Info("committed block", "height", id.Version, "app_hash", fmt.Sprintf("%X", id.Hash))
	return id
}

// BlockInfo returns the time and the app hash of a committed block.
func (app *BaseApp) BlockInfo(height client.Height) (time.Time, []byte, bool) {
	if height.RevisionNumber != app.revision {
		return time.Time{}, nil, false
	}
	info, ok := app.history[height.RevisionHeight]
	if !ok {
		return time.Time{}, nil, false
	}
	return info.time, info.appHash, true
}

// cacheTxContext returns a cache wrapped multistore for one transaction of the
// open block.
func (app *BaseApp) cacheTxContext(txType string) storetypes.CacheMultiStore {
	if !app.inBlock {
		panic("transaction outside of a block")
	}
	msCache := app.cms.CacheMultiStore()
	if msCache.TracingEnabled() {
		msCache = msCache.SetTracingContext(
			sdk.TraceContext(
				map[string]interface{}{
					"height": app.header.Height.String(),
					"tx":     txType,
				},
			),
		).(storetypes.CacheMultiStore)
	}
	return msCache
}
