package client_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/cosmos/cosmos-sdk/store/dbadapter"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/keeper"
	attested "github.com/hyperledger-labs/yui-ibc-core/light-clients/attested/types"
)

var (
	startTime = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	root      = bytes.Repeat([]byte{1}, 32)
)

const (
	trustingPeriod = time.Hour
	maxClockDrift  = time.Minute
)

func newContext(hostTime time.Time) *keeper.Context {
	header := keeper.Header{ChainID: "host-0", Height: client.NewHeight(0, 100), Time: hostTime}
	return keeper.NewContext(
		dbadapter.Store{DB: dbm.NewMemDB()},
		dbadapter.Store{DB: dbm.NewMemDB()},
		header,
		client.NewRegistry(attested.Codec{}),
		nil,
	)
}

func createClient(t *testing.T, k client.Keeper, ctx *keeper.Context, attestor *attested.Attestor) string {
	clientState := attestor.ClientState(client.NewHeight(0, 1), trustingPeriod, maxClockDrift)
	clientID, err := k.CreateClient(ctx, clientState, attested.NewConsensusState(startTime, root))
	require.NoError(t, err)
	return clientID
}

func TestCreateClient(t *testing.T) {
	attestor := attested.NewAttestor("counterparty-0")

	testCases := []struct {
		name          string
		params        client.Params
		consensusTime time.Time
		expPass       bool
		expErr        error
	}{
		{"success", client.DefaultParams(), startTime, true, nil},
		{"client type allowed explicitly", client.Params{AllowedClients: []string{attested.ClientType}}, startTime, true, nil},
		{"client type not allowed", client.Params{AllowedClients: []string{"07-tendermint"}}, startTime, false, client.ErrInvalidClientType},
		{"expired at creation", client.DefaultParams(), startTime.Add(-2 * trustingPeriod), false, client.ErrClientExpired},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			k := client.NewKeeper(tc.params, log.NewNopLogger())
			ctx := newContext(startTime.Add(time.Minute))
			clientState := attestor.ClientState(client.NewHeight(0, 1), trustingPeriod, maxClockDrift)

			clientID, err := k.CreateClient(ctx, clientState, attested.NewConsensusState(tc.consensusTime, root))
			if tc.expPass {
				require.NoError(t, err)
				require.Equal(t, attested.ClientType+"-0", clientID)
				require.Equal(t, client.Active, k.Status(ctx, clientID))
				_, err = ctx.ConsensusState(clientID, client.NewHeight(0, 1))
				require.NoError(t, err)
				processedHeight, ok := ctx.ClientProcessedHeight(clientID, client.NewHeight(0, 1))
				require.True(t, ok)
				require.Equal(t, ctx.HostHeight(), processedHeight)
			} else {
				require.True(t, errors.Is(err, tc.expErr), err)
			}
		})
	}
}

func TestClientIdentifiers(t *testing.T) {
	k := client.NewKeeper(client.DefaultParams(), log.NewNopLogger())
	ctx := newContext(startTime.Add(time.Minute))
	attestor := attested.NewAttestor("counterparty-0")

	require.Equal(t, "xx-attested-0", createClient(t, k, ctx, attestor))
	require.Equal(t, "xx-attested-1", createClient(t, k, ctx, attestor))
	require.Equal(t, client.Unknown, k.Status(ctx, "xx-attested-2"))
}

func TestUpdateClient(t *testing.T) {
	attestor := attested.NewAttestor("counterparty-0")
	hostTime := startTime.Add(10 * time.Minute)

	var (
		clientID string
		header   client.ClientMessage
	)

	testCases := []struct {
		name     string
		malleate func(t *testing.T)
		expErr   error
	}{
		{"success", func(t *testing.T) {
			h, err := attestor.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime.Add(time.Minute), root)
			require.NoError(t, err)
			header = h
		}, nil},
		{"client not found", func(t *testing.T) {
			clientID = "xx-attested-9"
			h, err := attestor.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime.Add(time.Minute), root)
			require.NoError(t, err)
			header = h
		}, client.ErrClientNotFound},
		{"unknown trusted height", func(t *testing.T) {
			h, err := attestor.Attest(client.NewHeight(0, 3), client.NewHeight(0, 2), startTime.Add(time.Minute), root)
			require.NoError(t, err)
			header = h
		}, client.ErrConsensusStateNotFound},
		{"header from the future", func(t *testing.T) {
			h, err := attestor.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), hostTime.Add(2*maxClockDrift), root)
			require.NoError(t, err)
			header = h
		}, client.ErrInvalidHeader},
		{"header signed by another key", func(t *testing.T) {
			h, err := attested.NewAttestor("counterparty-0").Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime.Add(time.Minute), root)
			require.NoError(t, err)
			header = h
		}, client.ErrInvalidHeader},
		{"header not later than the trusted one", func(t *testing.T) {
			h, err := attestor.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime, root)
			require.NoError(t, err)
			header = h
		}, client.ErrInvalidHeader},
		{"header not above the trusted height", func(t *testing.T) {
			h, err := attestor.Attest(client.NewHeight(0, 1), client.NewHeight(0, 1), startTime.Add(time.Minute), root)
			require.NoError(t, err)
			header = h
		}, client.ErrInvalidHeader},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			k := client.NewKeeper(client.DefaultParams(), log.NewNopLogger())
			ctx := newContext(hostTime)
			clientID = createClient(t, k, ctx, attestor)

			tc.malleate(t)

			err := k.UpdateClient(ctx, clientID, header)
			if tc.expErr == nil {
				require.NoError(t, err)
				clientState, err := ctx.ClientState(clientID)
				require.NoError(t, err)
				require.Equal(t, client.NewHeight(0, 2), clientState.GetLatestHeight())
				_, _, err = ctx.PrevConsensusState(clientID, client.NewHeight(0, 2))
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, tc.expErr), err)
			}
		})
	}
}

func TestUpdateClientFork(t *testing.T) {
	require := require.New(t)
	attestor := attested.NewAttestor("counterparty-0")
	k := client.NewKeeper(client.DefaultParams(), log.NewNopLogger())
	ctx := newContext(startTime.Add(10 * time.Minute))
	clientID := createClient(t, k, ctx, attestor)

	h2, err := attestor.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime.Add(time.Minute), root)
	require.NoError(err)
	require.NoError(k.UpdateClient(ctx, clientID, h2))

	// the same header again is a no-op
	require.NoError(k.UpdateClient(ctx, clientID, h2))
	require.Equal(client.Active, k.Status(ctx, clientID))

	fork, err := attestor.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime.Add(time.Minute), bytes.Repeat([]byte{2}, 32))
	require.NoError(err)
	require.NoError(k.UpdateClient(ctx, clientID, fork))
	require.Equal(client.Frozen, k.Status(ctx, clientID))

	h3, err := attestor.Attest(client.NewHeight(0, 3), client.NewHeight(0, 2), startTime.Add(2*time.Minute), root)
	require.NoError(err)
	err = k.UpdateClient(ctx, clientID, h3)
	require.True(errors.Is(err, client.ErrClientFrozen))
}

func TestSubmitMisbehaviour(t *testing.T) {
	attestor := attested.NewAttestor("counterparty-0")

	testCases := []struct {
		name    string
		roots   [2][]byte
		times   [2]time.Time
		heights [2]client.Height
		expPass bool
	}{
		{"different roots", [2][]byte{root, bytes.Repeat([]byte{2}, 32)}, [2]time.Time{startTime.Add(time.Minute), startTime.Add(time.Minute)}, [2]client.Height{client.NewHeight(0, 2), client.NewHeight(0, 2)}, true},
		{"different times", [2][]byte{root, root}, [2]time.Time{startTime.Add(time.Minute), startTime.Add(2 * time.Minute)}, [2]client.Height{client.NewHeight(0, 2), client.NewHeight(0, 2)}, true},
		{"time goes back", [2][]byte{root, root}, [2]time.Time{startTime.Add(time.Minute), startTime.Add(2 * time.Minute)}, [2]client.Height{client.NewHeight(0, 3), client.NewHeight(0, 2)}, true},
		{"consistent headers", [2][]byte{root, root}, [2]time.Time{startTime.Add(2 * time.Minute), startTime.Add(time.Minute)}, [2]client.Height{client.NewHeight(0, 3), client.NewHeight(0, 2)}, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			k := client.NewKeeper(client.DefaultParams(), log.NewNopLogger())
			ctx := newContext(startTime.Add(10 * time.Minute))
			clientID := createClient(t, k, ctx, attestor)

			h1, err := attestor.Attest(tc.heights[0], client.NewHeight(0, 1), tc.times[0], tc.roots[0])
			require.NoError(t, err)
			h2, err := attestor.Attest(tc.heights[1], client.NewHeight(0, 1), tc.times[1], tc.roots[1])
			require.NoError(t, err)

			err = k.SubmitMisbehaviour(ctx, clientID, attested.NewMisbehaviour(h1, h2))
			if tc.expPass {
				require.NoError(t, err)
				require.Equal(t, client.Frozen, k.Status(ctx, clientID))
			} else {
				require.True(t, errors.Is(err, client.ErrInvalidMisbehaviour), err)
				require.Equal(t, client.Active, k.Status(ctx, clientID))
			}
		})
	}
}

func TestRecoverClient(t *testing.T) {
	attestor := attested.NewAttestor("counterparty-0")
	hostTime := startTime.Add(10 * time.Minute)

	testCases := []struct {
		name     string
		malleate func(t *testing.T, k client.Keeper, ctx *keeper.Context) (string, string)
		expErr   error
	}{
		{"frozen subject", func(t *testing.T, k client.Keeper, ctx *keeper.Context) (string, string) {
			subject := createClient(t, k, ctx, attestor)
			freeze(t, k, ctx, attestor, subject)
			return subject, newerClient(t, k, ctx, attestor)
		}, nil},
		{"active subject", func(t *testing.T, k client.Keeper, ctx *keeper.Context) (string, string) {
			subject := createClient(t, k, ctx, attestor)
			return subject, newerClient(t, k, ctx, attestor)
		}, client.ErrInvalidSubstitute},
		{"frozen substitute", func(t *testing.T, k client.Keeper, ctx *keeper.Context) (string, string) {
			subject := createClient(t, k, ctx, attestor)
			freeze(t, k, ctx, attestor, subject)
			substitute := createClient(t, k, ctx, attestor)
			freeze(t, k, ctx, attestor, substitute)
			return subject, substitute
		}, client.ErrInvalidSubstitute},
		{"substitute not higher", func(t *testing.T, k client.Keeper, ctx *keeper.Context) (string, string) {
			subject := createClient(t, k, ctx, attestor)
			freeze(t, k, ctx, attestor, subject)
			return subject, createClient(t, k, ctx, attestor)
		}, client.ErrInvalidSubstitute},
		{"substitute of another chain", func(t *testing.T, k client.Keeper, ctx *keeper.Context) (string, string) {
			subject := createClient(t, k, ctx, attestor)
			freeze(t, k, ctx, attestor, subject)
			return subject, newerClient(t, k, ctx, attested.NewAttestor("other-0"))
		}, client.ErrInvalidSubstitute},
		{"substitute not found", func(t *testing.T, k client.Keeper, ctx *keeper.Context) (string, string) {
			subject := createClient(t, k, ctx, attestor)
			freeze(t, k, ctx, attestor, subject)
			return subject, "xx-attested-9"
		}, client.ErrClientNotFound},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			k := client.NewKeeper(client.DefaultParams(), log.NewNopLogger())
			ctx := newContext(hostTime)
			subject, substitute := tc.malleate(t, k, ctx)

			err := k.RecoverClient(ctx, subject, substitute)
			if tc.expErr == nil {
				require.NoError(t, err)
				require.Equal(t, client.Active, k.Status(ctx, subject))
				recovered, err := ctx.ClientState(subject)
				require.NoError(t, err)
				require.Equal(t, client.NewHeight(0, 5), recovered.GetLatestHeight())
				_, err = ctx.ConsensusState(subject, client.NewHeight(0, 5))
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, tc.expErr), err)
			}
		})
	}
}

// freeze submits a fork at height 2 against clientID.
func freeze(t *testing.T, k client.Keeper, ctx *keeper.Context, attestor *attested.Attestor, clientID string) {
	h1, err := attestor.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime.Add(time.Minute), root)
	require.NoError(t, err)
	h2, err := attestor.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime.Add(time.Minute), bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)
	require.NoError(t, k.SubmitMisbehaviour(ctx, clientID, attested.NewMisbehaviour(h1, h2)))
}

// newerClient creates a client of attestor's chain at height 5.
func newerClient(t *testing.T, k client.Keeper, ctx *keeper.Context, attestor *attested.Attestor) string {
	clientState := attestor.ClientState(client.NewHeight(0, 5), trustingPeriod, maxClockDrift)
	clientID, err := k.CreateClient(ctx, clientState, attested.NewConsensusState(startTime.Add(5*time.Minute), root))
	require.NoError(t, err)
	return clientID
}

func TestTimestampAtHeight(t *testing.T) {
	k := client.NewKeeper(client.DefaultParams(), log.NewNopLogger())
	ctx := newContext(startTime.Add(10 * time.Minute))
	attestor := attested.NewAttestor("counterparty-0")
	clientID := createClient(t, k, ctx, attestor)

	updateTime := startTime.Add(4 * time.Minute)
	header, err := attestor.Attest(client.NewHeight(0, 4), client.NewHeight(0, 1), updateTime, root)
	require.NoError(t, err)
	require.NoError(t, k.UpdateClient(ctx, clientID, header))

	testCases := []struct {
		name      string
		height    client.Height
		expHeight client.Height
		expTime   time.Time
		expPass   bool
	}{
		{"stored height", client.NewHeight(0, 1), client.NewHeight(0, 1), startTime, true},
		{"between stored heights", client.NewHeight(0, 3), client.NewHeight(0, 1), startTime, true},
		{"latest height", client.NewHeight(0, 4), client.NewHeight(0, 4), updateTime, true},
		{"above the latest height", client.NewHeight(0, 6), client.NewHeight(0, 4), updateTime, true},
		{"below every stored height", client.NewHeight(0, 0), client.Height{}, time.Time{}, false},
	}

	for _, tc := range testCases {
		timestamp, height, err := k.TimestampAtHeight(ctx, clientID, tc.height)
		if tc.expPass {
			require.NoError(t, err, tc.name)
			require.Equal(t, tc.expHeight, height, tc.name)
			require.Equal(t, uint64(tc.expTime.UnixNano()), timestamp, tc.name)

			_, found, err := client.ConsensusStateAtOrBelow(ctx, clientID, tc.height)
			require.NoError(t, err, tc.name)
			require.Equal(t, tc.expHeight, found, tc.name)
		} else {
			require.True(t, errors.Is(err, client.ErrConsensusStateNotFound), tc.name)
		}
	}
}
