package store

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cosmos/cosmos-sdk/store/cachemulti"
	"github.com/cosmos/cosmos-sdk/store/dbadapter"
	"github.com/cosmos/cosmos-sdk/store/mem"
	"github.com/cosmos/cosmos-sdk/store/tracekv"
	"github.com/cosmos/cosmos-sdk/store/transient"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	"github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/cosmos/cosmos-sdk/types/kv"
	abci "github.com/tendermint/tendermint/abci/types"
	tmcrypto "github.com/tendermint/tendermint/proto/tendermint/crypto"
	dbm "github.com/tendermint/tm-db"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
)

const latestVersionKey = "s/latest"

func commitInfoKey(version int64) []byte {
	return []byte(fmt.Sprintf("s/%d", version))
}

// Store is the commit multistore of a host chain. Stores mounted as
// StoreTypeDB are committed: their roots are chained under their names in a
// multistore tree whose root is the app hash. Memory and transient stores are
// not part of the app hash.
//
// The store roots of the latest version are written to the database, and
// LoadStores restores that version. Trees of earlier versions are kept in
// memory only, so they cannot be proven after a restart.
type Store struct {
	db           dbm.DB
	storesParams map[types.StoreKey]storeParams
	stores       map[types.StoreKey]types.CommitKVStore
	keysByName   map[string]types.StoreKey

	lastCommitID types.CommitID
	roots        map[int64]*commitment.Tree
	pruning      types.PruningOptions

	traceWriter  io.Writer
	traceContext types.TraceContext
}

// Queryable allows a Store to expose internal state to the abci.Query
// interface. Multistore can route requests to the proper Store.
//
// This is an optional, but useful extension to any CommitStore
type Queryable interface {
	Query(abci.RequestQuery) abci.ResponseQuery
}

var _ Queryable = (*Store)(nil)

func NewStore(db dbm.DB) *Store {
	return &Store{
		db:           db,
		storesParams: make(map[types.StoreKey]storeParams),
		stores:       make(map[types.StoreKey]types.CommitKVStore),
		keysByName:   make(map[string]types.StoreKey),
		roots:        make(map[int64]*commitment.Tree),
	}
}

// GetStoreType implements Store.
func (rs *Store) GetStoreType() types.StoreType {
	return types.StoreTypeMulti
}

// MountStoreWithDB mounts a store under key. A nil db shares the database of
// the multistore.
func (rs *Store) MountStoreWithDB(key types.StoreKey, typ types.StoreType, db dbm.DB) {
	if key == nil {
		panic("MountStoreWithDB() key cannot be nil")
	}
	if _, ok := rs.storesParams[key]; ok {
		panic(fmt.Sprintf("store duplicate store key %v", key))
	}
	if _, ok := rs.keysByName[key.Name()]; ok {
		panic(fmt.Sprintf("store duplicate store key name %v", key))
	}
	rs.storesParams[key] = storeParams{
		key: key,
		typ: typ,
		db:  db,
	}
	rs.keysByName[key.Name()] = key
}

// GetCommitKVStore returns a mounted CommitKVStore for a given StoreKey.
func (rs *Store) GetCommitKVStore(key types.StoreKey) types.CommitKVStore {
	return rs.stores[key]
}

func (rs *Store) LoadStores() error {
	// load each Store (note this doesn't panic on unmounted keys now)
	var newStores = make(map[types.StoreKey]types.CommitKVStore)
	for key, storeParams := range rs.storesParams {
		store, err := rs.loadStoreFromParams(key, storeParams)
		if err != nil {
			return err
		}
		store.SetPruning(rs.pruning)
		newStores[key] = store
	}
	rs.stores = newStores
	return rs.loadLatestCommit()
}

// loadLatestCommit restores the last version recorded in the database. The
// committed stores must hold exactly the data of that version.
func (rs *Store) loadLatestCommit() error {
	rs.roots = make(map[int64]*commitment.Tree)
	rs.lastCommitID = types.CommitID{}

	bz, err := rs.db.Get([]byte(latestVersionKey))
	if err != nil {
		return err
	}
	if bz == nil {
		return nil
	}
	version := int64(types.BigEndianToUint64(bz))
	bz, err = rs.db.Get(commitInfoKey(version))
	if err != nil {
		return err
	}
	if bz == nil {
		return fmt.Errorf("commit info of version %d not found", version)
	}
	var pairs kv.Pairs
	if err := pairs.Unmarshal(bz); err != nil {
		return fmt.Errorf("failed to decode commit info of version %d: %w", version, err)
	}
	roots := make(map[string][]byte, len(pairs.Pairs))
	for _, pair := range pairs.Pairs {
		roots[string(pair.Key)] = pair.Value
	}

	committed := 0
	for key, store := range rs.stores {
		if rs.storesParams[key].typ != types.StoreTypeDB {
			continue
		}
		committed++
		id := store.(*commitStore).restore(version)
		if !bytes.Equal(id.Hash, roots[key.Name()]) {
			return fmt.Errorf("store %s does not match its root at version %d", key.Name(), version)
		}
	}
	if committed != len(roots) {
		return fmt.Errorf("version %d committed %d stores, %d are mounted", version, len(roots), committed)
	}

	tree := commitment.NewTreeFromMap(roots)
	rs.roots[version] = tree
	rs.lastCommitID = types.CommitID{Version: version, Hash: tree.Root()}
	return nil
}

func (rs *Store) loadStoreFromParams(key types.StoreKey, params storeParams) (types.CommitKVStore, error) {
	var db dbm.DB

	if params.db != nil {
		db = dbm.NewPrefixDB(params.db, []byte("s/_/"))
	} else {
		prefix := "s/k:" + params.key.Name() + "/"
		db = dbm.NewPrefixDB(rs.db, []byte(prefix))
	}

	switch params.typ {
	case types.StoreTypeMulti:
		panic("recursive MultiStores not yet supported")
	case types.StoreTypeDB:
		return newCommitStore(dbadapter.Store{DB: db}), nil
	case types.StoreTypeTransient:
		_, ok := key.(*types.TransientStoreKey)
		if !ok {
			return nil, fmt.Errorf("invalid StoreKey for StoreTypeTransient: %s", key.String())
		}

		return transient.NewStore(), nil

	case types.StoreTypeMemory:
		if _, ok := key.(*types.MemoryStoreKey); !ok {
			return nil, fmt.Errorf("unexpected key type for a MemoryStoreKey; got: %s", key.String())
		}

		return mem.NewStore(), nil

	default:
		panic(fmt.Sprintf("unrecognized store type %v", params.typ))
	}
}

// SetPruning sets how many recent versions are kept for historical queries.
// A KeepRecent of zero keeps every version.
func (rs *Store) SetPruning(opts types.PruningOptions) {
	rs.pruning = opts
	for _, store := range rs.stores {
		store.SetPruning(opts)
	}
}

func (rs *Store) GetPruning() types.PruningOptions {
	return rs.pruning
}

// Commit commits every mounted store and returns the new app hash.
func (rs *Store) Commit() types.CommitID {
	version := rs.lastCommitID.Version + 1
	roots := make(map[string][]byte)
	for key, store := range rs.stores {
		commitID := store.Commit()
		if rs.storesParams[key].typ != types.StoreTypeDB {
			continue
		}
		if commitID.Version != version {
			panic(fmt.Sprintf("store %s committed version %d, expected %d", key.Name(), commitID.Version, version))
		}
		roots[key.Name()] = commitID.Hash
	}

	tree := commitment.NewTreeFromMap(roots)
	rs.roots[version] = tree
	if keep := int64(rs.pruning.KeepRecent); keep > 0 {
		delete(rs.roots, version-keep)
	}
	if err := rs.flushCommitInfo(version, roots); err != nil {
		panic(fmt.Errorf("failed to write commit info of version %d: %w", version, err))
	}
	rs.lastCommitID = types.CommitID{Version: version, Hash: tree.Root()}
	return rs.lastCommitID
}

// flushCommitInfo records the store roots of version as the latest commit.
func (rs *Store) flushCommitInfo(version int64, roots map[string][]byte) error {
	names := make([]string, 0, len(roots))
	for name := range roots {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := kv.Pairs{Pairs: make([]kv.Pair, 0, len(names))}
	for _, name := range names {
		pairs.Pairs = append(pairs.Pairs, kv.Pair{Key: []byte(name), Value: roots[name]})
	}
	bz, err := pairs.Marshal()
	if err != nil {
		return err
	}

	batch := rs.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(commitInfoKey(version), bz); err != nil {
		return err
	}
	if err := batch.Set([]byte(latestVersionKey), types.Uint64ToBigEndian(uint64(version))); err != nil {
		return err
	}
	if version > 1 {
		if err := batch.Delete(commitInfoKey(version - 1)); err != nil {
			return err
		}
	}
	return batch.WriteSync()
}

func (rs *Store) LastCommitID() types.CommitID {
	return rs.lastCommitID
}

// SetTracer sets the tracer for the MultiStore that the underlying
// stores will utilize to trace operations. A MultiStore is returned.
func (rs *Store) SetTracer(w io.Writer) *Store {
	rs.traceWriter = w
	return rs
}

// SetTracingContext updates the tracing context for the MultiStore by merging
// the given context with the existing context by key. Any existing keys will
// be overwritten. It is implied that the caller should update the context when
// necessary between tracing operations. It returns a modified MultiStore.
func (rs *Store) SetTracingContext(tc types.TraceContext) *Store {
	if rs.traceContext != nil {
		for k, v := range tc {
			rs.traceContext[k] = v
		}
	} else {
		rs.traceContext = tc
	}

	return rs
}

// TracingEnabled returns if tracing is enabled for the MultiStore.
func (rs *Store) TracingEnabled() bool {
	return rs.traceWriter != nil
}

// CacheMultiStore cache-wraps the multi-store and returns a CacheMultiStore.
// Nothing reaches the mounted stores before Write is called on it.
func (rs *Store) CacheMultiStore() types.CacheMultiStore {
	stores := make(map[types.StoreKey]types.CacheWrapper)
	for k, v := range rs.stores {
		stores[k] = v
	}

	return cachemulti.NewStore(rs.db, stores, rs.keysByName, rs.traceWriter, rs.traceContext, make(map[types.StoreKey][]storetypes.WriteListener))
}

// GetKVStore returns a mounted KVStore for a given StoreKey. If tracing is
// enabled on the KVStore, a wrapped TraceKVStore will be returned with the root
// store's tracer, otherwise, the original KVStore will be returned.
func (rs *Store) GetKVStore(key types.StoreKey) types.KVStore {
	store := rs.stores[key].(types.KVStore)

	if rs.TracingEnabled() {
		store = tracekv.NewStore(store, rs.traceWriter, rs.traceContext)
	}

	return store
}

// StoreNames returns the names of the committed stores.
func (rs *Store) StoreNames() []string {
	var names []string
	for key, params := range rs.storesParams {
		if params.typ == types.StoreTypeDB {
			names = append(names, key.Name())
		}
	}
	sort.Strings(names)
	return names
}

// getStoreByName performs a lookup of a StoreKey given a store name typically
// provided in a path. If the StoreKey does not exist, nil is returned.
func (rs *Store) getStoreByName(name string) types.Store {
	key := rs.keysByName[name]
	if key == nil {
		return nil
	}

	return rs.GetCommitKVStore(key)
}

//----------------------------------------
// +Queryable

// Query calls substore.Query with the same `req` where `req.Path` is
// modified to remove the substore prefix.
// Ie. `req.Path` here is `/<substore>/<path>`, and trimmed to `/<path>` for the substore.
// A proven query of a committed store gets a second proof op that chains the
// store root to the app hash of the queried version.
func (rs *Store) Query(req abci.RequestQuery) abci.ResponseQuery {
	path := req.Path
	storeName, subpath, err := parsePath(path)
	if err != nil {
		return sdkerrors.QueryResult(err)
	}

	store := rs.getStoreByName(storeName)
	if store == nil {
		return sdkerrors.QueryResult(sdkerrors.Wrapf(sdkerrors.ErrUnknownRequest, "no such store: %s", storeName))
	}

	queryable, ok := store.(Queryable)
	if !ok {
		return sdkerrors.QueryResult(sdkerrors.Wrapf(sdkerrors.ErrUnknownRequest, "store %s (type %T) doesn't support queries", storeName, store))
	}

	// trim the path and make the query
	req.Path = subpath
	res := queryable.Query(req)
	if !req.Prove || !res.IsOK() || res.ProofOps == nil {
		return res
	}

	root, ok := rs.roots[res.Height]
	if !ok {
		return sdkerrors.QueryResult(sdkerrors.Wrapf(sdkerrors.ErrInvalidHeight, "version %d is not available", res.Height))
	}
	proof, err := root.ProveExistence([]byte(storeName))
	if err != nil {
		return sdkerrors.QueryResult(err)
	}
	op, err := commitment.NewProofOp([]byte(storeName), proof)
	if err != nil {
		return sdkerrors.QueryResult(err)
	}
	res.ProofOps = &tmcrypto.ProofOps{Ops: append(res.ProofOps.Ops, op)}
	return res
}

// parsePath expects a format like /<storeName>[/<subpath>]
// Must start with /, subpath may be empty
// Returns error if it doesn't start with /
func parsePath(path string) (storeName string, subpath string, err error) {
	if !strings.HasPrefix(path, "/") {
		return storeName, subpath, sdkerrors.Wrapf(sdkerrors.ErrUnknownRequest, "invalid path: %s", path)
	}

	paths := strings.SplitN(path[1:], "/", 2)
	storeName = paths[0]

	if len(paths) == 2 {
		subpath = "/" + paths[1]
	}

	return storeName, subpath, nil
}

//----------------------------------------
// storeParams

type storeParams struct {
	key types.StoreKey
	db  dbm.DB
	typ types.StoreType
}
