package types

import (
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/crypto/ed25519"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

var _ client.ClientMessage = (*Header)(nil)

// Header attests the state root of the counterparty at Height. It is verified
// against the consensus state stored at TrustedHeight.
type Header struct {
	Height        client.Height
	TrustedHeight client.Height
	// Timestamp is the block time in unix nanoseconds.
	Timestamp uint64
	Root      []byte
	Signature []byte
}

func (h Header) ClientType() string {
	return ClientType
}

func (h Header) GetTime() time.Time {
	return time.Unix(0, int64(h.Timestamp))
}

func (h Header) ConsensusState() *ConsensusState {
	return &ConsensusState{Timestamp: h.Timestamp, Root: rootOf(h.Root)}
}

// ValidateBasic performs stateless checks of the header.
func (h Header) ValidateBasic() error {
	if h.Height.RevisionHeight == 0 {
		return sdkerrors.Wrap(client.ErrInvalidHeader, "header height cannot be zero")
	}
	if h.TrustedHeight.RevisionHeight == 0 {
		return sdkerrors.Wrap(client.ErrInvalidHeader, "trusted height cannot be zero")
	}
	if h.Height.RevisionNumber != h.TrustedHeight.RevisionNumber {
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "header revision %d does not match trusted revision %d", h.Height.RevisionNumber, h.TrustedHeight.RevisionNumber)
	}
	if h.Timestamp == 0 {
		return sdkerrors.Wrap(client.ErrInvalidHeader, "timestamp cannot be zero")
	}
	if len(h.Root) == 0 {
		return sdkerrors.Wrap(client.ErrInvalidHeader, "root cannot be empty")
	}
	if len(h.Signature) == 0 {
		return sdkerrors.Wrap(client.ErrInvalidHeader, "signature cannot be empty")
	}
	return nil
}

// SignBytes returns the bytes the attestation key signs. The chain id binds
// the signature to a single counterparty chain.
func (h Header) SignBytes(chainID string) []byte {
	return codec.NewEncoder().
		String(1, chainID).
		Message(2, h.Height.Marshal()).
		Uint64(3, h.Timestamp).
		Bytes(4, h.Root).
		Encode()
}

// Sign sets the signature of h using the attestation key of chainID.
func (h *Header) Sign(privKey ed25519.PrivKey, chainID string) error {
	sig, err := privKey.Sign(h.SignBytes(chainID))
	if err != nil {
		return err
	}
	h.Signature = sig
	return nil
}
