package types

import (
	"bytes"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// VerifyClientMessage checks a header or a misbehaviour against the trusted
// consensus states of the client.
func (cs ClientState) VerifyClientMessage(reader client.ClientReader, msg client.ClientMessage) error {
	switch msg := msg.(type) {
	case *Header:
		return cs.verifyHeader(reader, msg)
	case *Misbehaviour:
		return cs.verifyMisbehaviour(reader, msg)
	default:
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "unexpected client message %T", msg)
	}
}

// verifyHeader checks if the provided header is valid. It returns an error if:
// - no consensus state is stored at the trusted height
// - the trusted consensus state is outside of the trusting period
// - the header is not above the trusted height, or not above the latest height
//   unless a consensus state already exists at the header height
// - the header time is not after the trusted time, or is too far in the future
// - the attestation key did not sign the header
func (cs ClientState) verifyHeader(reader client.ClientReader, header *Header) error {
	if err := header.ValidateBasic(); err != nil {
		return err
	}

	trusted, ok := reader.ConsensusState(header.TrustedHeight)
	if !ok {
		return sdkerrors.Wrapf(client.ErrConsensusStateNotFound, "no consensus state at trusted height %s", header.TrustedHeight)
	}
	now := reader.HostTimestamp()
	if cs.IsExpired(trusted.GetTimestamp(), now) {
		return sdkerrors.Wrapf(client.ErrClientExpired, "consensus state at trusted height %s is outside of the trusting period %s", header.TrustedHeight, cs.TrustingPeriod)
	}

	if header.Height.LTE(header.TrustedHeight) {
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "header height %s must be greater than trusted height %s", header.Height, header.TrustedHeight)
	}
	if _, exists := reader.ConsensusState(header.Height); !exists && header.Height.LTE(cs.LatestHeight) {
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "header height %s must be greater than latest height %s", header.Height, cs.LatestHeight)
	}

	if err := cs.checkTimestamp(now, trusted.GetTimestamp(), header.Timestamp); err != nil {
		return sdkerrors.Wrap(client.ErrInvalidHeader, err.Error())
	}

	if !cs.PubKey.VerifySignature(header.SignBytes(cs.ChainID), header.Signature) {
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "invalid attestation of header at height %s", header.Height)
	}
	return nil
}

// checkTimestamp requires next to be after prev and at most MaxClockDrift
// ahead of now.
func (cs ClientState) checkTimestamp(now, prev, next uint64) error {
	if next <= prev {
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "header time %s must be after trusted time %s", fmtTime(next), fmtTime(prev))
	}
	maxTime := time.Unix(0, int64(now)).Add(cs.MaxClockDrift)
	if time.Unix(0, int64(next)).After(maxTime) {
		return sdkerrors.Wrapf(client.ErrInvalidHeader, "header time %s indicates future time, max allowed %s", fmtTime(next), maxTime.UTC())
	}
	return nil
}

// UpdateState returns the client state advanced to the header height, and
// the consensus state attested by the header.
//
// CONTRACT: VerifyClientMessage was called with msg.
func (cs ClientState) UpdateState(msg client.ClientMessage) (client.ClientState, client.ConsensusState, client.Height, error) {
	header, ok := msg.(*Header)
	if !ok {
		return nil, nil, client.Height{}, sdkerrors.Wrapf(client.ErrInvalidHeader, "expected %T, got %T", &Header{}, msg)
	}
	newClientState, consensusState := update(cs, *header)
	return newClientState, consensusState, header.Height, nil
}

func update(clientState ClientState, header Header) (*ClientState, *ConsensusState) {
	if header.Height.GT(clientState.LatestHeight) {
		clientState.LatestHeight = header.Height
	}
	return &clientState, header.ConsensusState()
}

func rootOf(root []byte) commitment.Root {
	return commitment.NewRoot(append([]byte(nil), root...))
}

func sameConsensus(a, b client.ConsensusState) bool {
	return a.GetTimestamp() == b.GetTimestamp() && bytes.Equal(a.GetRoot().Hash, b.GetRoot().Hash)
}

func fmtTime(ns uint64) string {
	return time.Unix(0, int64(ns)).UTC().String()
}
