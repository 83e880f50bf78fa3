package types

import (
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

var _ client.ConsensusState = (*ConsensusState)(nil)

// ConsensusState is the attested state root of the counterparty at one height.
type ConsensusState struct {
	// Timestamp is the block time in unix nanoseconds.
	Timestamp uint64
	Root      commitment.Root
}

func NewConsensusState(timestamp time.Time, root []byte) *ConsensusState {
	return &ConsensusState{Timestamp: uint64(timestamp.UnixNano()), Root: commitment.NewRoot(root)}
}

func (cs ConsensusState) ClientType() string {
	return ClientType
}

func (cs ConsensusState) GetRoot() commitment.Root {
	return cs.Root
}

func (cs ConsensusState) GetTimestamp() uint64 {
	return cs.Timestamp
}

func (cs ConsensusState) ValidateBasic() error {
	if cs.Root.Empty() {
		return sdkerrors.Wrap(client.ErrInvalidConsensus, "root cannot be empty")
	}
	if cs.Timestamp == 0 {
		return sdkerrors.Wrap(client.ErrInvalidConsensus, "timestamp cannot be zero")
	}
	return nil
}

// Marshal encodes the consensus state as 1 timestamp, 2 root (MerkleRoot).
func (cs ConsensusState) Marshal() []byte {
	root := codec.NewEncoder().Bytes(1, cs.Root.Hash).Encode()
	return codec.NewEncoder().Uint64(1, cs.Timestamp).Message(2, root).Encode()
}

func UnmarshalConsensusState(bz []byte) (*ConsensusState, error) {
	var cs ConsensusState
	err := codec.DecodeFields(bz, func(f codec.Field) error {
		switch f.Num {
		case 1:
			cs.Timestamp = f.Varint
		case 2:
			return codec.DecodeFields(f.Bytes, func(rf codec.Field) error {
				if rf.Num == 1 {
					cs.Root = commitment.NewRoot(append([]byte(nil), rf.Bytes...))
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, sdkerrors.Wrap(client.ErrInvalidConsensus, err.Error())
	}
	return &cs, nil
}
