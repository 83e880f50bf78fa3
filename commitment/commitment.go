package commitment

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	ics23 "github.com/confio/ics23/go"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	proto "github.com/gogo/protobuf/proto"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
)

// DefaultProofSpecs describes a two level commitment: the IBC store tree, chained
// under the host multistore tree. Both levels are simple RFC 6962 merkle trees.
var DefaultProofSpecs = []*ics23.ProofSpec{ics23.TendermintSpec, ics23.TendermintSpec}

// Root is the root hash of a committed state.
type Root struct {
	Hash []byte
}

func NewRoot(hash []byte) Root {
	return Root{Hash: hash}
}

func (r Root) Bytes() []byte {
	return r.Hash
}

func (r Root) Empty() bool {
	return len(r.Hash) == 0
}

func (r Root) Equal(other Root) bool {
	return bytes.Equal(r.Hash, other.Hash)
}

// Prefix is the store key every IBC path is committed under.
type Prefix struct {
	KeyPrefix []byte
}

func NewPrefix(keyPrefix []byte) Prefix {
	return Prefix{KeyPrefix: keyPrefix}
}

func (p Prefix) Bytes() []byte {
	return p.KeyPrefix
}

func (p Prefix) Empty() bool {
	return len(p.KeyPrefix) == 0
}

// Marshal encodes the prefix as ibc.core.commitment.v1.MerklePrefix.
func (p Prefix) Marshal() []byte {
	return codec.NewEncoder().Bytes(1, p.KeyPrefix).Encode()
}

func UnmarshalPrefix(bz []byte) (Prefix, error) {
	var p Prefix
	err := codec.DecodeFields(bz, func(f codec.Field) error {
		if f.Num == 1 {
			p.KeyPrefix = append([]byte(nil), f.Bytes...)
		}
		return nil
	})
	return p, err
}

// Path is the list of keys a value is committed under, ordered from the
// outermost store to the innermost key.
type Path struct {
	KeyPath []string
}

func NewPath(keyPath ...string) Path {
	return Path{KeyPath: keyPath}
}

// String returns the escaped path in the form "/key0/key1".
func (p Path) String() string {
	var sb strings.Builder
	for _, k := range p.KeyPath {
		sb.WriteString("/" + url.PathEscape(k))
	}
	return sb.String()
}

// Key returns the i-th key of the path, counted from the outermost store.
func (p Path) Key(i int) ([]byte, error) {
	if i < 0 || i >= len(p.KeyPath) {
		return nil, fmt.Errorf("index %d out of range for path of length %d", i, len(p.KeyPath))
	}
	return []byte(p.KeyPath[i]), nil
}

func (p Path) Empty() bool {
	return len(p.KeyPath) == 0
}

// ApplyPrefix constructs the full path of key under the commitment prefix.
func ApplyPrefix(prefix Prefix, key string) (Path, error) {
	if prefix.Empty() {
		return Path{}, sdkerrors.Wrap(ErrInvalidPrefix, "prefix can't be empty")
	}
	if strings.TrimSpace(key) == "" {
		return Path{}, sdkerrors.Wrap(ErrInvalidPrefix, "path can't be empty")
	}
	return NewPath(string(prefix.KeyPrefix), key), nil
}

// Proof chains one ics23 commitment proof per store level, ordered from the
// innermost store to the root.
type Proof struct {
	Proofs []*ics23.CommitmentProof
}

func (p Proof) Empty() bool {
	return len(p.Proofs) == 0
}

// Marshal encodes the proof as ibc.core.commitment.v1.MerkleProof.
func (p Proof) Marshal() ([]byte, error) {
	enc := codec.NewEncoder()
	for _, cp := range p.Proofs {
		bz, err := proto.Marshal(cp)
		if err != nil {
			return nil, sdkerrors.Wrap(ErrInvalidProof, err.Error())
		}
		enc.Message(1, bz)
	}
	return enc.Encode(), nil
}

func UnmarshalProof(bz []byte) (Proof, error) {
	var p Proof
	if len(bz) == 0 {
		return p, sdkerrors.Wrap(ErrInvalidProof, "empty proof")
	}
	err := codec.DecodeFields(bz, func(f codec.Field) error {
		if f.Num != 1 {
			return nil
		}
		var cp ics23.CommitmentProof
		if err := proto.Unmarshal(f.Bytes, &cp); err != nil {
			return sdkerrors.Wrap(ErrInvalidProof, err.Error())
		}
		p.Proofs = append(p.Proofs, &cp)
		return nil
	})
	if err != nil {
		return Proof{}, err
	}
	return p, nil
}
