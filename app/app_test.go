package app_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/hyperledger-labs/yui-ibc-core/app"
	"github.com/hyperledger-labs/yui-ibc-core/config"
	"github.com/hyperledger-labs/yui-ibc-core/core"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
	"github.com/hyperledger-labs/yui-ibc-core/core/port"
	attested "github.com/hyperledger-labs/yui-ibc-core/light-clients/attested/types"
	"github.com/hyperledger-labs/yui-ibc-core/testing/mock"
)

var startTime = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

func newApp(t *testing.T, chainID string) *app.App {
	cfg := config.DefaultConfig()
	cfg.Host.ChainID = chainID
	router := port.NewRouter().AddRoute(mock.PortID, mock.NewModule())
	application, err := app.NewApp(cfg, log.NewNopLogger(), dbm.NewMemDB(), nil, router)
	require.NoError(t, err)
	return application
}

func newMsgCreateClient(counterparty *attested.Attestor, height client.Height) *client.MsgCreateClient {
	clientState := counterparty.ClientState(height, time.Hour, time.Minute)
	consensusState := attested.NewConsensusState(startTime, bytes.Repeat([]byte{1}, 32))
	return client.NewMsgCreateClient(clientState, consensusState, "relayer")
}

func TestNewAppInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Host.ChainID = " "
	_, err := app.NewApp(cfg, log.NewNopLogger(), dbm.NewMemDB(), nil, port.NewRouter())
	require.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestBlocks(t *testing.T) {
	require := require.New(t)
	application := newApp(t, "testchain-3")

	header := application.BeginBlock(startTime)
	require.Equal(client.NewHeight(3, 1), header.Height)
	require.Panics(func() { application.BeginBlock(startTime) })

	id := application.Commit()
	require.Equal(int64(1), id.Version)
	require.Equal(int64(1), application.LastBlockHeight())
	require.Panics(func() { application.Commit() })

	blockTime, appHash, ok := application.BlockInfo(client.NewHeight(3, 1))
	require.True(ok)
	require.True(startTime.Equal(blockTime))
	require.Equal(id.Hash, appHash)

	_, _, ok = application.BlockInfo(client.NewHeight(0, 1))
	require.False(ok)
	_, _, ok = application.BlockInfo(client.NewHeight(3, 2))
	require.False(ok)

	// transactions run inside blocks only
	require.Panics(func() { _, _ = application.RunTx(newMsgCreateClient(attested.NewAttestor("counterparty-0"), client.NewHeight(0, 1))) })
}

func TestRunTx(t *testing.T) {
	counterparty := attested.NewAttestor("counterparty-0")

	testCases := []struct {
		name     string
		msgs     func() []core.Msg
		expPass  bool
		expCount uint64
	}{
		{"no messages", func() []core.Msg { return nil }, false, 0},
		{"nil message", func() []core.Msg { return []core.Msg{nil} }, false, 0},
		{"one client", func() []core.Msg {
			return []core.Msg{newMsgCreateClient(counterparty, client.NewHeight(0, 1))}
		}, true, 1},
		{"two clients", func() []core.Msg {
			return []core.Msg{
				newMsgCreateClient(counterparty, client.NewHeight(0, 1)),
				newMsgCreateClient(counterparty, client.NewHeight(0, 2)),
			}
		}, true, 2},
		{"second message fails", func() []core.Msg {
			header, err := counterparty.Attest(client.NewHeight(0, 2), client.NewHeight(0, 1), startTime.Add(time.Second), bytes.Repeat([]byte{2}, 32))
			require.NoError(t, err)
			return []core.Msg{
				newMsgCreateClient(counterparty, client.NewHeight(0, 1)),
				client.NewMsgUpdateClient("xx-attested-5", header, "relayer"),
			}
		}, false, 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			application := newApp(t, "testchain-0")
			application.BeginBlock(startTime.Add(time.Minute))

			res, err := application.RunTx(tc.msgs()...)
			if tc.expPass {
				require.NoError(t, err)
				require.NotNil(t, res)
				require.NotEmpty(t, res.Events)
			} else {
				require.Error(t, err)
			}
			counter, err := application.QueryContext().ClientCounter()
			require.NoError(t, err)
			require.Equal(t, tc.expCount, counter)
		})
	}
}

func TestQuery(t *testing.T) {
	require := require.New(t)
	application := newApp(t, "testchain-0")

	application.BeginBlock(startTime)
	// proofs need a committed block
	res := application.Query(abci.RequestQuery{Path: "/store/" + host.StoreKey + "/key", Data: host.FullClientStateKey("xx-attested-0"), Prove: true})
	require.False(res.IsOK())

	_, err := application.RunTx(newMsgCreateClient(attested.NewAttestor("counterparty-0"), client.NewHeight(0, 1)))
	require.NoError(err)
	application.Commit()

	res = application.Query(abci.RequestQuery{Path: "/store/" + host.StoreKey + "/key", Data: host.FullClientStateKey("xx-attested-0"), Height: 1, Prove: true})
	require.True(res.IsOK(), res.Log)
	require.NotEmpty(res.Value)
	require.NotNil(res.ProofOps)

	testCases := []struct {
		name string
		req  abci.RequestQuery
	}{
		{"empty path", abci.RequestQuery{Path: ""}},
		{"unknown path", abci.RequestQuery{Path: "/app/version"}},
		{"future height", abci.RequestQuery{Path: "/store/" + host.StoreKey + "/key", Data: host.FullClientStateKey("xx-attested-0"), Height: 2}},
		{"no custom route", abci.RequestQuery{Path: "/custom"}},
		{"unknown custom route", abci.RequestQuery{Path: "/custom/bank/balance"}},
		{"invalid index path", abci.RequestQuery{Path: "/custom/ibc/packet/mock/channel-0"}},
		{"invalid sequence", abci.RequestQuery{Path: "/custom/ibc/packet/mock/channel-0/one"}},
		{"unknown index", abci.RequestQuery{Path: "/custom/ibc/receipt/mock/channel-0/1"}},
		{"packet not indexed", abci.RequestQuery{Path: "/custom/ibc/packet/mock/channel-0/1"}},
		{"ack not indexed", abci.RequestQuery{Path: "/custom/ibc/ack/mock/channel-0/1"}},
	}

	for _, tc := range testCases {
		res := application.Query(tc.req)
		require.False(res.IsOK(), tc.name)
	}
}

func TestSealedOptions(t *testing.T) {
	application := newApp(t, "testchain-0")
	require.True(t, application.IsSealed())
	require.Panics(t, func() {
		application.SetQuerier("other", nil)
	})
}
