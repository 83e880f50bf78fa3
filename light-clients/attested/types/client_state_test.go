package types

import (
	"testing"
	"time"

	ics23 "github.com/confio/ics23/go"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

func TestValidate(t *testing.T) {
	attestor := NewAttestor(chainID)

	cases := []struct {
		name     string
		malleate func(cs *ClientState)
		valid    bool
	}{
		{"valid", func(cs *ClientState) {}, true},
		{"blank chain id", func(cs *ClientState) { cs.ChainID = " " }, false},
		{"zero trusting period", func(cs *ClientState) { cs.TrustingPeriod = 0 }, false},
		{"negative clock drift", func(cs *ClientState) { cs.MaxClockDrift = -time.Second }, false},
		{"zero latest height", func(cs *ClientState) { cs.LatestHeight = client.ZeroHeight() }, false},
		{"revision mismatch", func(cs *ClientState) { cs.LatestHeight = client.NewHeight(1, 10) }, false},
		{"short public key", func(cs *ClientState) { cs.PubKey = cs.PubKey[:16] }, false},
		{"no proof specs", func(cs *ClientState) { cs.ProofSpecs = nil }, false},
		{"nil proof spec", func(cs *ClientState) { cs.ProofSpecs = []*ics23.ProofSpec{ics23.TendermintSpec, nil} }, false},
	}
	for _, tc := range cases {
		cs := attestor.ClientState(client.NewHeight(0, 10), trustingPeriod, maxClockDrift)
		tc.malleate(cs)
		err := cs.Validate()
		if tc.valid {
			require.NoError(t, err, tc.name)
		} else {
			require.ErrorIs(t, err, client.ErrInvalidClientState, tc.name)
		}
	}
}

func TestStatus(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	require.Equal(client.Active, f.cs.Status(f.reader))

	f.reader.now = f.start.Add(trustingPeriod)
	require.Equal(client.Expired, f.cs.Status(f.reader))

	f.reader.now = f.start
	f.cs.LatestHeight = client.NewHeight(0, 11)
	require.Equal(client.Expired, f.cs.Status(f.reader), "missing latest consensus state")

	f.cs.FrozenHeight = client.NewHeight(0, 1)
	require.Equal(client.Frozen, f.cs.Status(f.reader))
}

func TestEncoding(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	f.cs.FrozenHeight = client.NewHeight(0, 3)

	cs, err := Codec{}.UnmarshalClientState(f.cs.Marshal())
	require.NoError(err)
	require.Equal(f.cs.Marshal(), cs.Marshal())
	require.Equal(f.cs.ChainID, cs.(*ClientState).ChainID)
	require.Len(cs.(*ClientState).ProofSpecs, len(commitment.DefaultProofSpecs))

	consState := NewConsensusState(f.start, []byte("root"))
	decoded, err := Codec{}.UnmarshalConsensusState(consState.Marshal())
	require.NoError(err)
	require.Equal(consState, decoded)

	registry := client.NewRegistry(Codec{})
	fromAny, err := registry.UnmarshalClientState(client.MarshalClientState(f.cs))
	require.NoError(err)
	require.Equal(f.cs.Marshal(), fromAny.Marshal())
	_, err = registry.UnmarshalConsensusState(client.MarshalClientState(f.cs))
	require.ErrorIs(err, client.ErrClientTypeNotFound)
}

func TestCheckSubstituteAndUpdateState(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	f.cs.FrozenHeight = client.NewHeight(0, 10)

	other := NewAttestor(chainID)
	substitute := other.ClientState(client.NewHeight(0, 30), 2*trustingPeriod, maxClockDrift)

	recovered, err := f.cs.CheckSubstituteAndUpdateState(substitute)
	require.NoError(err)
	rcs := recovered.(*ClientState)
	require.True(rcs.FrozenHeight.IsZero())
	require.Equal(client.NewHeight(0, 30), rcs.LatestHeight)
	require.Equal(other.PubKey(), rcs.PubKey)
	require.Equal(2*trustingPeriod, rcs.TrustingPeriod)

	substitute.ChainID = "another-0"
	_, err = f.cs.CheckSubstituteAndUpdateState(substitute)
	require.ErrorIs(err, client.ErrInvalidSubstitute)
}
