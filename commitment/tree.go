package commitment

import (
	"bytes"
	"math/bits"
	"sort"

	ics23 "github.com/confio/ics23/go"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/crypto/merkle"
	"github.com/tendermint/tendermint/crypto/tmhash"
	"google.golang.org/protobuf/encoding/protowire"
)

// KVPair is a committed key/value entry.
type KVPair struct {
	Key   []byte
	Value []byte
}

// Tree is an immutable simple merkle tree over key ordered entries. Its leaves
// and inner nodes follow ics23.TendermintSpec so proofs it produces verify with
// the ics23 verifier.
type Tree struct {
	pairs  []KVPair
	root   []byte
	proofs []*merkle.Proof
}

// NewTree builds a tree over pairs. Duplicate keys keep the last value.
func NewTree(pairs []KVPair) *Tree {
	sorted := make([]KVPair, 0, len(pairs))
	index := make(map[string]int, len(pairs))
	for _, p := range pairs {
		kv := KVPair{Key: append([]byte(nil), p.Key...), Value: append([]byte(nil), p.Value...)}
		if i, ok := index[string(p.Key)]; ok {
			sorted[i] = kv
			continue
		}
		index[string(p.Key)] = len(sorted)
		sorted = append(sorted, kv)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Key, sorted[j].Key) < 0
	})

	leaves := make([][]byte, len(sorted))
	for i, p := range sorted {
		leaves[i] = leafBytes(p.Key, p.Value)
	}
	root, proofs := merkle.ProofsFromByteSlices(leaves)
	return &Tree{pairs: sorted, root: root, proofs: proofs}
}

// NewTreeFromMap builds a tree over a string keyed map.
func NewTreeFromMap(m map[string][]byte) *Tree {
	pairs := make([]KVPair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, KVPair{Key: []byte(k), Value: v})
	}
	return NewTree(pairs)
}

func (t *Tree) Root() []byte {
	return t.root
}

func (t *Tree) Len() int {
	return len(t.pairs)
}

func (t *Tree) Get(key []byte) ([]byte, bool) {
	i, found := t.search(key)
	if !found {
		return nil, false
	}
	return t.pairs[i].Value, true
}

// Prove returns the value stored at key together with an existence proof, or a
// nil value with a non-existence proof when the key is absent.
func (t *Tree) Prove(key []byte) ([]byte, *ics23.CommitmentProof, error) {
	i, found := t.search(key)
	if found {
		ep, err := t.existenceProof(i)
		if err != nil {
			return nil, nil, err
		}
		return t.pairs[i].Value, &ics23.CommitmentProof{Proof: &ics23.CommitmentProof_Exist{Exist: ep}}, nil
	}
	np, err := t.nonExistenceProof(key, i)
	if err != nil {
		return nil, nil, err
	}
	return nil, &ics23.CommitmentProof{Proof: &ics23.CommitmentProof_Nonexist{Nonexist: np}}, nil
}

func (t *Tree) ProveExistence(key []byte) (*ics23.CommitmentProof, error) {
	value, proof, err := t.Prove(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, sdkerrors.Wrapf(ErrKeyNotFound, "key %q", key)
	}
	return proof, nil
}

func (t *Tree) ProveNonExistence(key []byte) (*ics23.CommitmentProof, error) {
	value, proof, err := t.Prove(key)
	if err != nil {
		return nil, err
	}
	if value != nil {
		return nil, sdkerrors.Wrapf(ErrKeyExists, "key %q", key)
	}
	return proof, nil
}

// search returns the index of key, or the index it would be inserted at.
func (t *Tree) search(key []byte) (int, bool) {
	i := sort.Search(len(t.pairs), func(i int) bool {
		return bytes.Compare(t.pairs[i].Key, key) >= 0
	})
	return i, i < len(t.pairs) && bytes.Equal(t.pairs[i].Key, key)
}

func (t *Tree) existenceProof(i int) (*ics23.ExistenceProof, error) {
	path, err := innerOps(t.proofs[i])
	if err != nil {
		return nil, err
	}
	leaf := *ics23.TendermintSpec.LeafSpec
	return &ics23.ExistenceProof{
		Key:   t.pairs[i].Key,
		Value: t.pairs[i].Value,
		Leaf:  &leaf,
		Path:  path,
	}, nil
}

func (t *Tree) nonExistenceProof(key []byte, i int) (*ics23.NonExistenceProof, error) {
	if len(t.pairs) == 0 {
		return nil, sdkerrors.Wrap(ErrInvalidProof, "cannot prove absence in an empty tree")
	}
	np := &ics23.NonExistenceProof{Key: key}
	if i > 0 {
		left, err := t.existenceProof(i - 1)
		if err != nil {
			return nil, err
		}
		np.Left = left
	}
	if i < len(t.pairs) {
		right, err := t.existenceProof(i)
		if err != nil {
			return nil, err
		}
		np.Right = right
	}
	return np, nil
}

// leafBytes is the leaf preimage expected by ics23.TendermintSpec:
// varint(len(key)) || key || varint(32) || sha256(value).
func leafBytes(key, value []byte) []byte {
	vh := tmhash.Sum(value)
	bz := make([]byte, 0, len(key)+len(vh)+4)
	bz = protowire.AppendVarint(bz, uint64(len(key)))
	bz = append(bz, key...)
	bz = protowire.AppendVarint(bz, uint64(len(vh)))
	bz = append(bz, vh...)
	return bz
}

// innerOps converts the aunts of a simple merkle proof into ics23 inner ops,
// ordered from the leaf to the root.
func innerOps(p *merkle.Proof) ([]*ics23.InnerOp, error) {
	steps := buildPath(p.Index, p.Total)
	if len(steps) != len(p.Aunts) {
		return nil, sdkerrors.Wrapf(ErrInvalidProof, "expected %d aunts, got %d", len(steps), len(p.Aunts))
	}
	ops := make([]*ics23.InnerOp, 0, len(p.Aunts))
	for i, aunt := range p.Aunts {
		op := &ics23.InnerOp{Hash: ics23.HashOp_SHA256}
		if steps[i] {
			// node is a left child, aunt hashes on the right
			op.Prefix = []byte{1}
			op.Suffix = aunt
		} else {
			op.Prefix = append([]byte{1}, aunt...)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// buildPath returns, leaf first, whether the node at each level is a left child.
func buildPath(index, total int64) []bool {
	if total < 2 {
		return nil
	}
	numLeft := splitPoint(total)
	if index < numLeft {
		return append(buildPath(index, numLeft), true)
	}
	return append(buildPath(index-numLeft, total-numLeft), false)
}

// splitPoint is the largest power of two strictly less than length.
func splitPoint(length int64) int64 {
	k := int64(1) << uint(bits.Len64(uint64(length))-1)
	if k == length {
		k >>= 1
	}
	return k
}
