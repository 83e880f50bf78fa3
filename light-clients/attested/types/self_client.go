package types

import (
	"bytes"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	proto "github.com/gogo/protobuf/proto"
	"github.com/tendermint/tendermint/crypto/ed25519"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// BlockHistory returns the committed headers of the host chain.
type BlockHistory interface {
	// BlockInfo returns the time and the app hash of the block at height.
	BlockInfo(height client.Height) (timestamp time.Time, root []byte, ok bool)
}

// SelfClient describes a host chain whose headers are attested by PubKey, as
// the attested client of a counterparty sees it.
type SelfClient struct {
	ChainID string
	PubKey  ed25519.PubKey
	History BlockHistory
}

func (sc SelfClient) ConsensusState(height client.Height) (client.ConsensusState, error) {
	timestamp, root, ok := sc.History.BlockInfo(height)
	if !ok {
		return nil, sdkerrors.Wrapf(client.ErrSelfConsensusStateNotFound, "no block at height %s", height)
	}
	return NewConsensusState(timestamp, root), nil
}

// ValidateClient checks that clientState tracks this chain with its
// attestation key and proof format, and is not ahead of hostHeight.
func (sc SelfClient) ValidateClient(clientState client.ClientState, hostHeight client.Height) error {
	cs, ok := clientState.(*ClientState)
	if !ok {
		return sdkerrors.Wrapf(client.ErrInvalidSelfClient, "expected %T, got %T", &ClientState{}, clientState)
	}
	if cs.IsFrozen() {
		return sdkerrors.Wrap(client.ErrInvalidSelfClient, "client is frozen")
	}
	if cs.ChainID != sc.ChainID {
		return sdkerrors.Wrapf(client.ErrInvalidSelfClient, "chain id %s does not match host chain id %s", cs.ChainID, sc.ChainID)
	}
	if cs.LatestHeight.RevisionNumber != hostHeight.RevisionNumber {
		return sdkerrors.Wrapf(client.ErrInvalidSelfClient, "client revision %d does not match host revision %d", cs.LatestHeight.RevisionNumber, hostHeight.RevisionNumber)
	}
	if cs.LatestHeight.GTE(hostHeight) {
		return sdkerrors.Wrapf(client.ErrInvalidSelfClient, "client latest height %s must be lower than host height %s", cs.LatestHeight, hostHeight)
	}
	if !bytes.Equal(cs.PubKey, sc.PubKey) {
		return sdkerrors.Wrap(client.ErrInvalidSelfClient, "attestation key does not match")
	}
	if len(cs.ProofSpecs) != len(commitment.DefaultProofSpecs) {
		return sdkerrors.Wrap(client.ErrInvalidSelfClient, "proof specs do not match")
	}
	for i, spec := range commitment.DefaultProofSpecs {
		if !proto.Equal(cs.ProofSpecs[i], spec) {
			return sdkerrors.Wrapf(client.ErrInvalidSelfClient, "proof spec %d does not match", i)
		}
	}
	return nil
}
