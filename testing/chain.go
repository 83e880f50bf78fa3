package testing

import (
	"fmt"
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/hyperledger-labs/yui-ibc-core/app"
	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/config"
	"github.com/hyperledger-labs/yui-ibc-core/core"
	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
	"github.com/hyperledger-labs/yui-ibc-core/core/port"
	attested "github.com/hyperledger-labs/yui-ibc-core/light-clients/attested/types"
	"github.com/hyperledger-labs/yui-ibc-core/testing/mock"
)

const (
	// Default params used to create an attested client
	TrustingPeriod time.Duration = time.Hour * 24 * 7 * 2
	MaxClockDrift  time.Duration = time.Minute * 10

	DefaultSender = "relayer"
)

// Header is a committed block of a TestChain.
type Header struct {
	Height  client.Height
	Time    time.Time
	AppHash []byte
}

// TestChain is a host chain whose blocks are attested by a single key. A block
// is always open: transactions execute in it and NextBlock commits it. The
// counterparties' clients of a TestChain are updated with its LastHeader.
type TestChain struct {
	t *testing.T

	ChainID    string
	App        *app.App
	Attestor   *attested.Attestor
	MockModule *mock.Module
	LastHeader Header // header of the last committed block

	currentTime   time.Time // time of the next block
	SenderAccount string
}

// NewTestChain returns a chain whose first block is committed. The mock module
// is bound to mock.PortID.
func NewTestChain(t *testing.T, chainID string) *TestChain {
	attestor := attested.NewAttestor(chainID)
	mockModule := mock.NewModule()
	router := port.NewRouter().AddRoute(mock.PortID, mockModule)

	cfg := config.DefaultConfig()
	cfg.Host.ChainID = chainID
	application, err := app.NewApp(
		cfg, log.NewNopLogger(), dbm.NewMemDB(), nil, router,
		app.WithSelfClient(app.AttestedSelfClient(chainID, attestor.PubKey())),
	)
	require.NoError(t, err)

	chain := &TestChain{
		t:             t,
		ChainID:       chainID,
		App:           application,
		Attestor:      attestor,
		MockModule:    mockModule,
		currentTime:   globalStartTime,
		SenderAccount: DefaultSender,
	}
	application.BeginBlock(chain.currentTime)
	chain.NextBlock()
	return chain
}

// NextBlock commits the open block and opens the next one at the current
// time of the chain.
func (chain *TestChain) NextBlock() {
	header := chain.App.Header()
	id := chain.App.Commit()
	chain.LastHeader = Header{Height: header.Height, Time: header.Time, AppHash: id.Hash}

	// block times are strictly increasing
	if !chain.currentTime.After(header.Time) {
		chain.currentTime = header.Time.Add(timeIncrement)
	}
	chain.App.BeginBlock(chain.currentTime)
}

// CurrentTime returns the time of the open block.
func (chain *TestChain) CurrentTime() time.Time {
	return chain.App.Header().Time
}

// QueryProof performs an abci query with the given key and returns the proto encoded merkle proof
// for the query and the height at which the proof will succeed on a client of this chain.
func (chain *TestChain) QueryProof(key []byte) ([]byte, client.Height) {
	res := chain.App.Query(abci.RequestQuery{
		Path:   fmt.Sprintf("/store/%s/key", chain.App.StoreKey().Name()),
		Height: int64(chain.LastHeader.Height.RevisionHeight),
		Data:   key,
		Prove:  true,
	})
	require.True(chain.t, res.IsOK(), res.Log)

	proof, err := commitment.ProofFromProofOps(res.ProofOps)
	require.NoError(chain.t, err)
	bz, err := proof.Marshal()
	require.NoError(chain.t, err)

	return bz, chain.LastHeader.Height
}

// QueryClientStateProof performs and abci query for a client state
// stored with a given clientID and returns the ClientState along with the proof
func (chain *TestChain) QueryClientStateProof(clientID string) (client.ClientState, []byte) {
	clientState := chain.GetClientState(clientID)
	proofClient, _ := chain.QueryProof(host.FullClientStateKey(clientID))
	return clientState, proofClient
}

// QueryConsensusStateProof performs an abci query for a consensus state
// stored on the given clientID. The proof and consensusHeight are returned.
func (chain *TestChain) QueryConsensusStateProof(clientID string) ([]byte, client.Height) {
	consensusHeight := chain.GetClientState(clientID).GetLatestHeight()
	proofConsensus, _ := chain.QueryProof(host.FullConsensusStateKey(clientID, consensusHeight.RevisionNumber, consensusHeight.RevisionHeight))
	return proofConsensus, consensusHeight
}

// GetPrefix returns the prefix used by a chain in connection creation
func (chain *TestChain) GetPrefix() commitment.Prefix {
	return chain.App.CommitmentPrefix()
}

// GetClientState retrieves the client state for the provided clientID. The client is
// expected to exist otherwise testing will fail.
func (chain *TestChain) GetClientState(clientID string) client.ClientState {
	clientState, err := chain.App.QueryContext().ClientState(clientID)
	require.NoError(chain.t, err)
	return clientState
}

// ClientStatus returns the status of clientID as seen at the open block.
func (chain *TestChain) ClientStatus(clientID string) client.Status {
	ctx := chain.App.QueryContext()
	return chain.GetClientState(clientID).Status(client.NewClientReader(ctx, clientID))
}

// GetConsensusState retrieves the consensus state for the provided clientID and height.
func (chain *TestChain) GetConsensusState(clientID string, height client.Height) (client.ConsensusState, bool) {
	consensusState, err := chain.App.QueryContext().ConsensusState(clientID, height)
	return consensusState, err == nil
}

// GetConnection retrieves an IBC Connection for the provided TestConnection. The
// connection is expected to exist otherwise testing will fail.
func (chain *TestChain) GetConnection(testConnection *TestConnection) connection.ConnectionEnd {
	conn, err := chain.App.QueryContext().ConnectionEnd(testConnection.ID)
	require.NoError(chain.t, err)
	return conn
}

// GetChannel retrieves an IBC Channel for the provided TestChannel. The channel
// is expected to exist otherwise testing will fail.
func (chain *TestChain) GetChannel(testChannel TestChannel) channel.ChannelEnd {
	ch, err := chain.App.QueryContext().ChannelEnd(testChannel.PortID, testChannel.ID)
	require.NoError(chain.t, err)
	return ch
}

// GetAcknowledgement retrieves the acknowledgement commitment of the provided packet. If the
// acknowledgement does not exist then testing will fail.
func (chain *TestChain) GetAcknowledgement(packet channel.Packet) []byte {
	ack, found := chain.App.QueryContext().PacketAcknowledgement(packet.DestinationPort, packet.DestinationChannel, packet.Sequence)
	require.True(chain.t, found)
	return ack
}

// GetModuleState returns the value of key in the store of the mock module.
func (chain *TestChain) GetModuleState(key []byte) []byte {
	return chain.App.QueryContext().ModuleStore(mock.PortID).Get(key)
}

// SendMsgs executes msgs as a single transaction of the open block and
// commits the block, whatever the outcome.
func (chain *TestChain) SendMsgs(msgs ...core.Msg) (*sdk.Result, error) {
	res, err := chain.App.RunTx(msgs...)
	chain.NextBlock()
	return res, err
}

// ConstructMsgCreateClient returns a message creating a client of counterparty
// at its last committed block.
func (chain *TestChain) ConstructMsgCreateClient(counterparty *TestChain) *client.MsgCreateClient {
	last := counterparty.LastHeader
	clientState := counterparty.Attestor.ClientState(last.Height, TrustingPeriod, MaxClockDrift)
	consensusState := attested.NewConsensusState(last.Time, last.AppHash)
	return client.NewMsgCreateClient(clientState, consensusState, chain.SenderAccount)
}

// CreateClient creates a client of counterparty and returns its identifier.
func (chain *TestChain) CreateClient(counterparty *TestChain) (string, error) {
	res, err := chain.SendMsgs(chain.ConstructMsgCreateClient(counterparty))
	if err != nil {
		return "", err
	}
	return attribute(res.Events, client.EventTypeCreateClient, client.AttributeKeyClientID)
}

// ConstructUpdateClientHeader returns a header of the last committed block of
// counterparty, verifiable from the latest height of clientID.
func (chain *TestChain) ConstructUpdateClientHeader(counterparty *TestChain, clientID string) (*attested.Header, error) {
	trustedHeight := chain.GetClientState(clientID).GetLatestHeight()
	last := counterparty.LastHeader
	return counterparty.Attestor.Attest(last.Height, trustedHeight, last.Time, last.AppHash)
}

// UpdateClient updates clientID to the last committed block of counterparty.
// It does nothing when the client is already up to date.
func (chain *TestChain) UpdateClient(counterparty *TestChain, clientID string) error {
	if chain.GetClientState(clientID).GetLatestHeight().GTE(counterparty.LastHeader.Height) {
		return nil
	}
	header, err := chain.ConstructUpdateClientHeader(counterparty, clientID)
	if err != nil {
		return err
	}
	_, err = chain.SendMsgs(client.NewMsgUpdateClient(clientID, header, chain.SenderAccount))
	return err
}

// ConnectionOpenInit will construct and execute a MsgConnectionOpenInit.
func (chain *TestChain) ConnectionOpenInit(counterparty *TestChain, conn, counterpartyConn *TestConnection) error {
	msg := connection.NewMsgConnectionOpenInit(
		conn.ClientID, counterpartyConn.ClientID, counterparty.GetPrefix(),
		nil, 0, chain.SenderAccount,
	)
	res, err := chain.SendMsgs(msg)
	if err != nil {
		return err
	}
	conn.ID, err = attribute(res.Events, connection.EventTypeConnectionOpenInit, connection.AttributeKeyConnectionID)
	return err
}

// ConnectionOpenTry will construct and execute a MsgConnectionOpenTry.
func (chain *TestChain) ConnectionOpenTry(counterparty *TestChain, conn, counterpartyConn *TestConnection) error {
	counterpartyClient, proofClient := counterparty.QueryClientStateProof(counterpartyConn.ClientID)
	proofConsensus, consensusHeight := counterparty.QueryConsensusStateProof(counterpartyConn.ClientID)
	proofInit, proofHeight := counterparty.QueryProof(host.ConnectionKey(counterpartyConn.ID))
	versions := counterparty.GetConnection(counterpartyConn).Versions

	msg := connection.NewMsgConnectionOpenTry(
		conn.ClientID, counterpartyConn.ID, counterpartyConn.ClientID,
		counterpartyClient, counterparty.GetPrefix(), versions, 0,
		proofInit, proofClient, proofConsensus,
		proofHeight, consensusHeight, chain.SenderAccount,
	)
	res, err := chain.SendMsgs(msg)
	if err != nil {
		return err
	}
	conn.ID, err = attribute(res.Events, connection.EventTypeConnectionOpenTry, connection.AttributeKeyConnectionID)
	return err
}

// ConnectionOpenAck will construct and execute a MsgConnectionOpenAck.
func (chain *TestChain) ConnectionOpenAck(counterparty *TestChain, conn, counterpartyConn *TestConnection) error {
	counterpartyClient, proofClient := counterparty.QueryClientStateProof(counterpartyConn.ClientID)
	proofConsensus, consensusHeight := counterparty.QueryConsensusStateProof(counterpartyConn.ClientID)
	proofTry, proofHeight := counterparty.QueryProof(host.ConnectionKey(counterpartyConn.ID))
	version := counterparty.GetConnection(counterpartyConn).Versions[0]

	msg := connection.NewMsgConnectionOpenAck(
		conn.ID, counterpartyConn.ID, counterpartyClient,
		proofTry, proofClient, proofConsensus,
		proofHeight, consensusHeight,
		&version, chain.SenderAccount,
	)
	_, err := chain.SendMsgs(msg)
	return err
}

// ConnectionOpenConfirm will construct and execute a MsgConnectionOpenConfirm.
func (chain *TestChain) ConnectionOpenConfirm(counterparty *TestChain, conn, counterpartyConn *TestConnection) error {
	proof, height := counterparty.QueryProof(host.ConnectionKey(counterpartyConn.ID))
	msg := connection.NewMsgConnectionOpenConfirm(conn.ID, proof, height, chain.SenderAccount)
	_, err := chain.SendMsgs(msg)
	return err
}

// ChanOpenInit will construct and execute a MsgChannelOpenInit. The
// identifier of the new channel is set on ch.
func (chain *TestChain) ChanOpenInit(ch *TestChannel, counterparty TestChannel, order channel.Order, connectionID string) error {
	msg := channel.NewMsgChannelOpenInit(
		ch.PortID, ch.Version, order, []string{connectionID},
		counterparty.PortID, chain.SenderAccount,
	)
	res, err := chain.SendMsgs(msg)
	if err != nil {
		return err
	}
	ch.ID, err = attribute(res.Events, channel.EventTypeChannelOpenInit, channel.AttributeKeyChannelID)
	if err != nil {
		return err
	}
	ch.Version, err = attribute(res.Events, channel.EventTypeChannelOpenInit, channel.AttributeKeyVersion)
	return err
}

// ChanOpenTry will construct and execute a MsgChannelOpenTry. The identifier
// of the new channel is set on ch.
func (chain *TestChain) ChanOpenTry(
	counterparty *TestChain,
	ch *TestChannel, counterpartyCh TestChannel,
	order channel.Order, connectionID string,
) error {
	proof, height := counterparty.QueryProof(host.ChannelKey(counterpartyCh.PortID, counterpartyCh.ID))
	counterpartyVersion := counterparty.GetChannel(counterpartyCh).Version

	msg := channel.NewMsgChannelOpenTry(
		ch.PortID, ch.Version, order, []string{connectionID},
		counterpartyCh.PortID, counterpartyCh.ID, counterpartyVersion,
		proof, height, chain.SenderAccount,
	)
	res, err := chain.SendMsgs(msg)
	if err != nil {
		return err
	}
	ch.ID, err = attribute(res.Events, channel.EventTypeChannelOpenTry, channel.AttributeKeyChannelID)
	if err != nil {
		return err
	}
	ch.Version, err = attribute(res.Events, channel.EventTypeChannelOpenTry, channel.AttributeKeyVersion)
	return err
}

// ChanOpenAck will construct and execute a MsgChannelOpenAck.
func (chain *TestChain) ChanOpenAck(counterparty *TestChain, ch, counterpartyCh TestChannel) error {
	proof, height := counterparty.QueryProof(host.ChannelKey(counterpartyCh.PortID, counterpartyCh.ID))
	msg := channel.NewMsgChannelOpenAck(
		ch.PortID, ch.ID, counterpartyCh.ID, counterparty.GetChannel(counterpartyCh).Version,
		proof, height, chain.SenderAccount,
	)
	_, err := chain.SendMsgs(msg)
	return err
}

// ChanOpenConfirm will construct and execute a MsgChannelOpenConfirm.
func (chain *TestChain) ChanOpenConfirm(counterparty *TestChain, ch, counterpartyCh TestChannel) error {
	proof, height := counterparty.QueryProof(host.ChannelKey(counterpartyCh.PortID, counterpartyCh.ID))
	msg := channel.NewMsgChannelOpenConfirm(ch.PortID, ch.ID, proof, height, chain.SenderAccount)
	_, err := chain.SendMsgs(msg)
	return err
}

// ChanCloseInit will construct and execute a MsgChannelCloseInit.
func (chain *TestChain) ChanCloseInit(ch TestChannel) error {
	msg := channel.NewMsgChannelCloseInit(ch.PortID, ch.ID, chain.SenderAccount)
	_, err := chain.SendMsgs(msg)
	return err
}

// ChanCloseConfirm will construct and execute a MsgChannelCloseConfirm.
func (chain *TestChain) ChanCloseConfirm(counterparty *TestChain, ch, counterpartyCh TestChannel) error {
	proof, height := counterparty.QueryProof(host.ChannelKey(counterpartyCh.PortID, counterpartyCh.ID))
	msg := channel.NewMsgChannelCloseConfirm(ch.PortID, ch.ID, proof, height, chain.SenderAccount)
	_, err := chain.SendMsgs(msg)
	return err
}

// SendPacket sends data over ch on behalf of the module bound to its port
// and commits the block.
func (chain *TestChain) SendPacket(
	ch, counterpartyCh TestChannel,
	timeoutHeight client.Height, timeoutTimestamp uint64,
	data []byte,
) (channel.Packet, error) {
	sequence, err := chain.App.SendPacket(ch.PortID, ch.ID, timeoutHeight, timeoutTimestamp, data)
	chain.NextBlock()
	if err != nil {
		return channel.Packet{}, err
	}
	return channel.NewPacket(data, sequence, ch.PortID, ch.ID, counterpartyCh.PortID, counterpartyCh.ID, timeoutHeight, timeoutTimestamp), nil
}

// WriteAcknowledgement writes the asynchronous acknowledgement of a received
// packet and commits the block.
func (chain *TestChain) WriteAcknowledgement(packet channel.Packet, ack channel.AcknowledgementI) error {
	err := chain.App.WriteAcknowledgement(packet, ack)
	chain.NextBlock()
	return err
}
