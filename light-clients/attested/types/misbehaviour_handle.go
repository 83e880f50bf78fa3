package types

import (
	"bytes"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// verifyMisbehaviour checks that both headers are validly attested from
// trusted consensus states within the trusting period.
func (cs ClientState) verifyMisbehaviour(reader client.ClientReader, misbehaviour *Misbehaviour) error {
	if err := misbehaviour.ValidateBasic(); err != nil {
		return err
	}
	for i, header := range []*Header{misbehaviour.Header1, misbehaviour.Header2} {
		if err := cs.verifyAttestation(reader, header); err != nil {
			return sdkerrors.Wrapf(client.ErrInvalidMisbehaviour, "header %d: %v", i+1, err)
		}
	}
	return nil
}

// verifyAttestation is verifyHeader without the checks against the latest
// height, so headers older than the client can still serve as evidence.
func (cs ClientState) verifyAttestation(reader client.ClientReader, header *Header) error {
	trusted, ok := reader.ConsensusState(header.TrustedHeight)
	if !ok {
		return sdkerrors.Wrapf(client.ErrConsensusStateNotFound, "no consensus state at trusted height %s", header.TrustedHeight)
	}
	if cs.IsExpired(trusted.GetTimestamp(), reader.HostTimestamp()) {
		return sdkerrors.Wrapf(client.ErrClientExpired, "consensus state at trusted height %s is outside of the trusting period", header.TrustedHeight)
	}
	if header.Height.LTE(header.TrustedHeight) {
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "header height %s must be greater than trusted height %s", header.Height, header.TrustedHeight)
	}
	if header.Timestamp <= trusted.GetTimestamp() {
		return sdkerrors.Wrap(client.ErrInvalidHeader, "header time must be after trusted time")
	}
	if !cs.PubKey.VerifySignature(header.SignBytes(cs.ChainID), header.Signature) {
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "invalid attestation of header at height %s", header.Height)
	}
	return nil
}

// CheckForMisbehaviour detects misbehaviour in a verified message. A header
// is misbehaviour when it conflicts with a stored consensus state at the same
// height, or breaks time monotonicity with its stored neighbours.
func (cs ClientState) CheckForMisbehaviour(reader client.ClientReader, msg client.ClientMessage) bool {
	switch msg := msg.(type) {
	case *Header:
		consState := msg.ConsensusState()
		if existing, ok := reader.ConsensusState(msg.Height); ok {
			return !sameConsensus(existing, consState)
		}
		if prev, _, ok := reader.PrevConsensusState(msg.Height); ok && prev.GetTimestamp() >= msg.Timestamp {
			return true
		}
		if next, _, ok := reader.NextConsensusState(msg.Height); ok && next.GetTimestamp() <= msg.Timestamp {
			return true
		}
		return false
	case *Misbehaviour:
		h1, h2 := msg.Header1, msg.Header2
		if h1.Height.EQ(h2.Height) {
			return !bytes.Equal(h1.Root, h2.Root) || h1.Timestamp != h2.Timestamp
		}
		// h1 is higher, so its time must be strictly later
		return h1.Timestamp <= h2.Timestamp
	}
	return false
}

// UpdateStateOnMisbehaviour freezes the client at the height of the evidence.
func (cs ClientState) UpdateStateOnMisbehaviour(msg client.ClientMessage) client.ClientState {
	frozenHeight := cs.LatestHeight
	switch msg := msg.(type) {
	case *Header:
		frozenHeight = msg.Height
	case *Misbehaviour:
		frozenHeight = msg.Header1.Height
	}
	cs.FrozenHeight = frozenHeight
	return &cs
}
