package types

import (
	"testing"
	"time"

	ics23 "github.com/confio/ics23/go"
	"github.com/stretchr/testify/require"
	tmtime "github.com/tendermint/tendermint/types/time"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

type fakeHistory map[client.Height]time.Time

func (h fakeHistory) BlockInfo(height client.Height) (time.Time, []byte, bool) {
	t, ok := h[height]
	if !ok {
		return time.Time{}, nil, false
	}
	return t, []byte("app hash " + height.String()), true
}

func TestSelfClientConsensusState(t *testing.T) {
	require := require.New(t)
	now := tmtime.Now()
	attestor := NewAttestor(chainID)
	sc := SelfClient{ChainID: chainID, PubKey: attestor.PubKey(), History: fakeHistory{client.NewHeight(0, 3): now}}

	cs, err := sc.ConsensusState(client.NewHeight(0, 3))
	require.NoError(err)
	require.Equal(NewConsensusState(now, []byte("app hash 0-3")), cs)

	_, err = sc.ConsensusState(client.NewHeight(0, 4))
	require.ErrorIs(err, client.ErrSelfConsensusStateNotFound)
}

func TestSelfClientValidateClient(t *testing.T) {
	attestor := NewAttestor(chainID)
	sc := SelfClient{ChainID: chainID, PubKey: attestor.PubKey()}
	hostHeight := client.NewHeight(0, 20)

	cases := []struct {
		name     string
		malleate func(cs *ClientState)
		valid    bool
	}{
		{"valid", func(cs *ClientState) {}, true},
		{"frozen", func(cs *ClientState) { cs.FrozenHeight = client.NewHeight(0, 1) }, false},
		{"other chain", func(cs *ClientState) { cs.ChainID = "other-0" }, false},
		{"other revision", func(cs *ClientState) { cs.LatestHeight = client.NewHeight(1, 10) }, false},
		{"height not below host height", func(cs *ClientState) { cs.LatestHeight = hostHeight }, false},
		{"other key", func(cs *ClientState) { cs.PubKey = NewAttestor(chainID).PubKey() }, false},
		{"other proof specs", func(cs *ClientState) { cs.ProofSpecs = []*ics23.ProofSpec{ics23.IavlSpec, ics23.TendermintSpec} }, false},
		{"single proof spec", func(cs *ClientState) { cs.ProofSpecs = cs.ProofSpecs[:1] }, false},
	}
	for _, tc := range cases {
		cs := attestor.ClientState(client.NewHeight(0, 10), trustingPeriod, maxClockDrift)
		tc.malleate(cs)
		err := sc.ValidateClient(cs, hostHeight)
		if tc.valid {
			require.NoError(t, err, tc.name)
		} else {
			require.ErrorIs(t, err, client.ErrInvalidSelfClient, tc.name)
		}
	}
}
