package keeper

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/cosmos/cosmos-sdk/store/dbadapter"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	dbm "github.com/tendermint/tm-db"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	attested "github.com/hyperledger-labs/yui-ibc-core/light-clients/attested/types"
)

const clientID = "xx-attested-0"

var startTime = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

func newTestContext() *Context {
	header := Header{ChainID: "testchain-0", Height: client.NewHeight(0, 10), Time: startTime}
	return NewContext(
		dbadapter.Store{DB: dbm.NewMemDB()},
		dbadapter.Store{DB: dbm.NewMemDB()},
		header,
		client.NewRegistry(attested.Codec{}),
		nil,
	)
}

func consensusStateAt(i int) client.ConsensusState {
	return attested.NewConsensusState(startTime.Add(time.Duration(i)*time.Second), bytes.Repeat([]byte{byte(i)}, 32))
}

func TestClientStore(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	_, err := ctx.ClientState(clientID)
	require.True(errors.Is(err, client.ErrClientNotFound))

	clientState := attested.NewAttestor("counterparty-0").ClientState(client.NewHeight(0, 5), time.Hour, time.Minute)
	require.NoError(ctx.SetClientState(clientID, clientState))
	stored, err := ctx.ClientState(clientID)
	require.NoError(err)
	require.Equal(clientState.Marshal(), stored.Marshal())

	_, err = ctx.ConsensusState(clientID, client.NewHeight(0, 5))
	require.True(errors.Is(err, client.ErrConsensusStateNotFound))

	// stored out of order, across revisions
	heights := []client.Height{
		client.NewHeight(0, 10),
		client.NewHeight(0, 2),
		client.NewHeight(1, 1),
		client.NewHeight(0, 5),
	}
	for i, h := range heights {
		require.NoError(ctx.SetConsensusState(clientID, h, consensusStateAt(i)))
	}

	testCases := []struct {
		name    string
		height  client.Height
		expPrev client.Height
		expNext client.Height
	}{
		{"between", client.NewHeight(0, 7), client.NewHeight(0, 5), client.NewHeight(0, 10)},
		{"at a stored height", client.NewHeight(0, 5), client.NewHeight(0, 2), client.NewHeight(0, 10)},
		{"lowest", client.NewHeight(0, 2), client.Height{}, client.NewHeight(0, 5)},
		{"revision boundary", client.NewHeight(0, 11), client.NewHeight(0, 10), client.NewHeight(1, 1)},
		{"highest", client.NewHeight(1, 1), client.NewHeight(0, 10), client.Height{}},
	}

	for _, tc := range testCases {
		_, prev, err := ctx.PrevConsensusState(clientID, tc.height)
		if tc.expPrev.IsZero() {
			require.True(errors.Is(err, client.ErrConsensusStateNotFound), tc.name)
		} else {
			require.NoError(err, tc.name)
			require.Equal(tc.expPrev, prev, tc.name)
		}

		_, next, err := ctx.NextConsensusState(clientID, tc.height)
		if tc.expNext.IsZero() {
			require.True(errors.Is(err, client.ErrConsensusStateNotFound), tc.name)
		} else {
			require.NoError(err, tc.name)
			require.Equal(tc.expNext, next, tc.name)
		}
	}

	// other clients are not visible
	_, _, err = ctx.PrevConsensusState("xx-attested-1", client.NewHeight(0, 7))
	require.Error(err)

	_, ok := ctx.ClientProcessedTime(clientID, client.NewHeight(0, 5))
	require.False(ok)
	require.NoError(ctx.SetClientProcessed(clientID, client.NewHeight(0, 5), 42, client.NewHeight(0, 9)))
	processedTime, ok := ctx.ClientProcessedTime(clientID, client.NewHeight(0, 5))
	require.True(ok)
	require.Equal(uint64(42), processedTime)
	processedHeight, ok := ctx.ClientProcessedHeight(clientID, client.NewHeight(0, 5))
	require.True(ok)
	require.Equal(client.NewHeight(0, 9), processedHeight)
}

func TestCounters(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	counters := []struct {
		get      func() (uint64, error)
		increase func() error
	}{
		{ctx.ClientCounter, ctx.IncreaseClientCounter},
		{ctx.ConnectionCounter, ctx.IncreaseConnectionCounter},
		{ctx.ChannelCounter, ctx.IncreaseChannelCounter},
	}
	for i, c := range counters {
		for n := 0; n <= i; n++ {
			require.NoError(c.increase())
		}
	}
	for i, c := range counters {
		v, err := c.get()
		require.NoError(err)
		require.Equal(uint64(i+1), v)
	}
}

func TestSequences(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	_, err := ctx.NextSequenceSend("mock", "channel-0")
	require.True(errors.Is(err, channel.ErrSequenceSendNotFound))
	_, err = ctx.NextSequenceRecv("mock", "channel-0")
	require.True(errors.Is(err, channel.ErrSequenceReceiveNotFound))
	_, err = ctx.NextSequenceAck("mock", "channel-0")
	require.True(errors.Is(err, channel.ErrSequenceAckNotFound))

	require.NoError(ctx.SetNextSequenceSend("mock", "channel-0", 1))
	require.NoError(ctx.SetNextSequenceRecv("mock", "channel-0", 7))
	seq, err := ctx.NextSequenceSend("mock", "channel-0")
	require.NoError(err)
	require.Equal(uint64(1), seq)
	seq, err = ctx.NextSequenceRecv("mock", "channel-0")
	require.NoError(err)
	require.Equal(uint64(7), seq)

	require.False(ctx.PacketReceipt("mock", "channel-0", 1))
	require.NoError(ctx.SetPacketReceipt("mock", "channel-0", 1))
	require.True(ctx.PacketReceipt("mock", "channel-0", 1))

	require.NoError(ctx.SetPacketCommitment("mock", "channel-0", 1, []byte("commitment")))
	bz, found := ctx.PacketCommitment("mock", "channel-0", 1)
	require.True(found)
	require.Equal([]byte("commitment"), bz)
	require.NoError(ctx.DeletePacketCommitment("mock", "channel-0", 1))
	_, found = ctx.PacketCommitment("mock", "channel-0", 1)
	require.False(found)
}

func TestCacheContext(t *testing.T) {
	testCases := []struct {
		name   string
		commit bool
	}{
		{"commit", true},
		{"discard", false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)
			ctx := newTestContext()

			cached, write := ctx.CacheContext()
			cachedCtx := cached.(*Context)
			require.NoError(cachedCtx.IncreaseClientCounter())
			cachedCtx.ModuleStore("mock").Set([]byte("key"), []byte("value"))
			cachedCtx.EmitEvent(sdk.NewEvent("test"))

			// nothing reaches the parent before commit
			counter, err := ctx.ClientCounter()
			require.NoError(err)
			require.Zero(counter)
			require.Nil(ctx.ModuleStore("mock").Get([]byte("key")))
			require.Empty(ctx.Events())

			if tc.commit {
				write()
			}

			counter, err = ctx.ClientCounter()
			require.NoError(err)
			if tc.commit {
				require.Equal(uint64(1), counter)
				require.Equal([]byte("value"), ctx.ModuleStore("mock").Get([]byte("key")))
				require.Len(ctx.Events(), 1)
			} else {
				require.Zero(counter)
				require.Nil(ctx.ModuleStore("mock").Get([]byte("key")))
				require.Empty(ctx.Events())
			}
		})
	}
}

func TestModuleStoreIsolation(t *testing.T) {
	require := require.New(t)
	ctx := newTestContext()

	ctx.ModuleStore("mock").Set([]byte("key"), []byte("mock"))
	ctx.ModuleStore("transfer").Set([]byte("key"), []byte("transfer"))
	require.Equal([]byte("mock"), ctx.ModuleStore("mock").Get([]byte("key")))
	require.Equal([]byte("transfer"), ctx.ModuleStore("transfer").Get([]byte("key")))
	require.Nil(ctx.ModuleStore("mo").Get([]byte("ck/key")))
}

func TestMultiEventHandler(t *testing.T) {
	require := require.New(t)
	store := dbadapter.Store{DB: dbm.NewMemDB()}

	var calls []string
	handler := func(name string, continue_ bool, err error) EventHandler {
		return EventHandlerFunc(func(storetypes.KVStore, []abci.Event) (bool, error) {
			calls = append(calls, name)
			return continue_, err
		})
	}

	require.NoError(NewMultiEventHandler(handler("a", true, nil), handler("b", false, nil), handler("c", true, nil)).Handle(store, nil))
	require.Equal([]string{"a", "b"}, calls)

	calls = nil
	errStop := errors.New("stop")
	err := NewMultiEventHandler(handler("a", true, errStop), handler("b", true, nil)).Handle(store, nil)
	require.Equal(errStop, err)
	require.Equal([]string{"a"}, calls)
}

func TestPacketIndex(t *testing.T) {
	require := require.New(t)
	store := dbadapter.Store{DB: dbm.NewMemDB()}

	_, err := QueryPacket(store, "mock", "channel-0", 1)
	require.True(errors.Is(err, channel.ErrPacketCommitmentNotFound))
	_, err = QueryPacketAcknowledgement(store, "mock", "channel-1", 1)
	require.True(errors.Is(err, channel.ErrInvalidAcknowledgement))

	// events without packets leave the index untouched
	events := sdk.Events{sdk.NewEvent(channel.EventTypeChannelOpenInit)}.ToABCIEvents()
	require.NoError(DefaultMultiEventHandler().Handle(store, events))
	_, err = QueryPacket(store, "mock", "channel-0", 1)
	require.Error(err)
}
