package store

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/store/dbadapter"
	"github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/cosmos/cosmos-sdk/types/kv"
	abci "github.com/tendermint/tendermint/abci/types"
	tmcrypto "github.com/tendermint/tendermint/proto/tendermint/crypto"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
)

// commitStore is a KVStore over a tm-db database whose commit hash is the
// root of a commitment.Tree over every entry. A tree is kept for each of the
// retained versions, so proofs can be produced for past heights.
type commitStore struct {
	dbadapter.Store

	lastCommitID types.CommitID
	trees        map[int64]*commitment.Tree
	pruning      types.PruningOptions
}

var _ types.CommitKVStore = (*commitStore)(nil)
var _ Queryable = (*commitStore)(nil)

func newCommitStore(store dbadapter.Store) *commitStore {
	return &commitStore{
		Store: store,
		trees: make(map[int64]*commitment.Tree),
	}
}

// Commit snapshots the store into a new tree.
func (cs *commitStore) Commit() types.CommitID {
	tree := cs.snapshot()
	version := cs.lastCommitID.Version + 1
	cs.trees[version] = tree
	if keep := int64(cs.pruning.KeepRecent); keep > 0 {
		delete(cs.trees, version-keep)
	}

	cs.lastCommitID = types.CommitID{Version: version, Hash: tree.Root()}
	return cs.lastCommitID
}

// restore makes the current data of the store the tree of version, dropping
// every other version.
func (cs *commitStore) restore(version int64) types.CommitID {
	tree := cs.snapshot()
	cs.trees = map[int64]*commitment.Tree{version: tree}
	cs.lastCommitID = types.CommitID{Version: version, Hash: tree.Root()}
	return cs.lastCommitID
}

func (cs *commitStore) snapshot() *commitment.Tree {
	var pairs []commitment.KVPair
	iterator := cs.Iterator(nil, nil)
	for ; iterator.Valid(); iterator.Next() {
		pairs = append(pairs, commitment.KVPair{Key: iterator.Key(), Value: iterator.Value()})
	}
	iterator.Close()
	return commitment.NewTree(pairs)
}

func (cs *commitStore) LastCommitID() types.CommitID {
	return cs.lastCommitID
}

func (cs *commitStore) SetPruning(opts types.PruningOptions) {
	cs.pruning = opts
}

func (cs *commitStore) GetPruning() types.PruningOptions {
	return cs.pruning
}

// tree returns the tree committed at version, or the latest one when
// version is zero.
func (cs *commitStore) tree(version int64) (*commitment.Tree, error) {
	if version == 0 {
		version = cs.lastCommitID.Version
	}
	tree, ok := cs.trees[version]
	if !ok {
		return nil, sdkerrors.Wrapf(sdkerrors.ErrInvalidHeight, "version %d is not available", version)
	}
	return tree, nil
}

// Query returns a result correspond to given query. Keys are read from the
// committed version req.Height and proven when req.Prove is set.
func (cs *commitStore) Query(req abci.RequestQuery) (res abci.ResponseQuery) {
	if len(req.Data) == 0 {
		return sdkerrors.QueryResult(sdkerrors.Wrap(sdkerrors.ErrTxDecode, "query cannot be zero length"))
	}

	switch req.Path {
	case "/key": // get by key
		tree, err := cs.tree(req.Height)
		if err != nil {
			return sdkerrors.QueryResult(err)
		}
		key := req.Data // data holds the key bytes
		res.Key = key
		res.Height = req.Height
		if res.Height == 0 {
			res.Height = cs.lastCommitID.Version
		}
		if !req.Prove {
			res.Value, _ = tree.Get(key)
			return res
		}
		value, proof, err := tree.Prove(key)
		if err != nil {
			return sdkerrors.QueryResult(err)
		}
		op, err := commitment.NewProofOp(key, proof)
		if err != nil {
			return sdkerrors.QueryResult(err)
		}
		res.Value = value
		res.ProofOps = &tmcrypto.ProofOps{Ops: []tmcrypto.ProofOp{op}}
	case "/subspace":
		pairs := kv.Pairs{
			Pairs: make([]kv.Pair, 0),
		}

		subspace := req.Data
		res.Key = subspace

		iterator := types.KVStorePrefixIterator(cs.Store, subspace)
		for ; iterator.Valid(); iterator.Next() {
			pairs.Pairs = append(pairs.Pairs, kv.Pair{Key: iterator.Key(), Value: iterator.Value()})
		}
		iterator.Close()

		bz, err := pairs.Marshal()
		if err != nil {
			panic(fmt.Errorf("failed to marshal KV pairs: %w", err))
		}

		res.Value = bz
	default:
		return sdkerrors.QueryResult(sdkerrors.Wrapf(sdkerrors.ErrUnknownRequest, "unexpected query path: %v", req.Path))
	}

	return res
}
