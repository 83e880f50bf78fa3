package client

import (
	"fmt"
	"strconv"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
)

// Height is a monotonically increasing data type that can be compared against
// another Height for the purposes of updating and freezing clients. A height
// is ordered by revision number first and revision height second.
type Height struct {
	RevisionNumber uint64
	RevisionHeight uint64
}

func NewHeight(revisionNumber, revisionHeight uint64) Height {
	return Height{RevisionNumber: revisionNumber, RevisionHeight: revisionHeight}
}

// ZeroHeight is the height of a field that was never set.
func ZeroHeight() Height {
	return Height{}
}

// Compare returns -1, 0 or 1 when h is lower than, equal to or greater than other.
func (h Height) Compare(other Height) int {
	switch {
	case h.RevisionNumber < other.RevisionNumber:
		return -1
	case h.RevisionNumber > other.RevisionNumber:
		return 1
	case h.RevisionHeight < other.RevisionHeight:
		return -1
	case h.RevisionHeight > other.RevisionHeight:
		return 1
	}
	return 0
}

func (h Height) LT(other Height) bool  { return h.Compare(other) < 0 }
func (h Height) LTE(other Height) bool { return h.Compare(other) <= 0 }
func (h Height) GT(other Height) bool  { return h.Compare(other) > 0 }
func (h Height) GTE(other Height) bool { return h.Compare(other) >= 0 }
func (h Height) EQ(other Height) bool  { return h.Compare(other) == 0 }

func (h Height) IsZero() bool {
	return h.RevisionNumber == 0 && h.RevisionHeight == 0
}

// Increment returns the next height within the same revision.
func (h Height) Increment() Height {
	return NewHeight(h.RevisionNumber, h.RevisionHeight+1)
}

// Decrement returns the previous height within the same revision. It returns
// false when h is the first height of its revision.
func (h Height) Decrement() (Height, bool) {
	if h.RevisionHeight == 0 {
		return Height{}, false
	}
	return NewHeight(h.RevisionNumber, h.RevisionHeight-1), true
}

func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// Marshal encodes h as ibc.core.client.v1.Height.
func (h Height) Marshal() []byte {
	return codec.NewEncoder().Uint64(1, h.RevisionNumber).Uint64(2, h.RevisionHeight).Encode()
}

func UnmarshalHeight(bz []byte) (Height, error) {
	var h Height
	err := codec.DecodeFields(bz, func(f codec.Field) error {
		switch f.Num {
		case 1:
			h.RevisionNumber = f.Varint
		case 2:
			h.RevisionHeight = f.Varint
		}
		return nil
	})
	return h, err
}

// ParseHeight parses a height in the "{revision}-{height}" format.
func ParseHeight(s string) (Height, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Height{}, sdkerrors.Wrapf(ErrInvalidHeight, "expected {revision}-{height}, got %s", s)
	}
	rn, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Height{}, sdkerrors.Wrapf(ErrInvalidHeight, "invalid revision number %s: %v", parts[0], err)
	}
	rh, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Height{}, sdkerrors.Wrapf(ErrInvalidHeight, "invalid revision height %s: %v", parts[1], err)
	}
	return NewHeight(rn, rh), nil
}

// ParseChainID returns the revision number of a chain id in the
// "{name}-{revision}" format, or 0 when the chain id has no revision.
func ParseChainID(chainID string) uint64 {
	i := strings.LastIndex(chainID, "-")
	if i < 0 {
		return 0
	}
	rn, err := strconv.ParseUint(chainID[i+1:], 10, 64)
	if err != nil {
		return 0
	}
	return rn
}
