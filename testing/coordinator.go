package testing

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/yui-ibc-core/core"
	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
	"github.com/hyperledger-labs/yui-ibc-core/testing/mock"
)

var (
	ChainIDPrefix   = "testchain"
	globalStartTime = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	timeIncrement   = time.Second * 5
)

// Coordinator is a testing struct which contains N TestChain's. It handles keeping all chains
// in sync with regards to time.
type Coordinator struct {
	t *testing.T

	Chains map[string]*TestChain
}

// NewCoordinator initializes Coordinator with N TestChain's
func NewCoordinator(t *testing.T, n int) *Coordinator {
	chains := make(map[string]*TestChain)

	for i := 0; i < n; i++ {
		chainID := GetChainID(i)
		chains[chainID] = NewTestChain(t, chainID)
	}
	return &Coordinator{
		t:      t,
		Chains: chains,
	}
}

// GetChainID returns the chainID used for the provided index.
func GetChainID(index int) string {
	return ChainIDPrefix + strconv.Itoa(index)
}

// GetChain returns the TestChain using the given chainID and returns an error if it does
// not exist.
func (coord *Coordinator) GetChain(chainID string) *TestChain {
	chain, found := coord.Chains[chainID]
	require.True(coord.t, found, fmt.Sprintf("%s chain does not exist", chainID))
	return chain
}

// Setup constructs a client, connection, and channel on both chains provided. It will
// fail if any error occurs. The TestConnections and TestChannels are returned for both
// chains. The channels created are connected to the mock application.
func (coord *Coordinator) Setup(
	chainA, chainB *TestChain, order channel.Order,
) (*TestConnection, *TestConnection, TestChannel, TestChannel) {
	connA, connB := coord.SetupClientConnections(chainA, chainB)

	// channels can also be referenced through the returned connections
	channelA, channelB := coord.CreateMockChannels(chainA, chainB, connA, connB, order)

	return connA, connB, channelA, channelB
}

// SetupClientConnections is a helper function to create clients and the appropriate
// connections on both the source and counterparty chain. It assumes the caller does not
// anticipate any errors.
func (coord *Coordinator) SetupClientConnections(chainA, chainB *TestChain) (*TestConnection, *TestConnection) {
	clientA, clientB := coord.SetupClients(chainA, chainB)
	return coord.CreateConnection(chainA, chainB, clientA, clientB)
}

// SetupClients is a helper function to create clients on both chains. It assumes the
// caller does not anticipate any errors.
func (coord *Coordinator) SetupClients(chainA, chainB *TestChain) (string, string) {
	clientA, err := coord.CreateClient(chainA, chainB)
	require.NoError(coord.t, err)

	clientB, err := coord.CreateClient(chainB, chainA)
	require.NoError(coord.t, err)

	return clientA, clientB
}

// CreateClient creates a counterparty client on the source chain and returns the clientID.
func (coord *Coordinator) CreateClient(source, counterparty *TestChain) (string, error) {
	clientID, err := source.CreateClient(counterparty)
	if err != nil {
		return "", err
	}
	coord.IncrementTime()
	return clientID, nil
}

// UpdateClient updates a counterparty client on the source chain.
func (coord *Coordinator) UpdateClient(source, counterparty *TestChain, clientID string) error {
	if err := source.UpdateClient(counterparty, clientID); err != nil {
		return err
	}
	coord.IncrementTime()
	return nil
}

// CreateConnection constructs and executes connection handshake messages in order to create
// OPEN connections on chainA and chainB. The function expects the connections to be
// successfully opened otherwise testing will fail.
func (coord *Coordinator) CreateConnection(chainA, chainB *TestChain, clientA, clientB string) (*TestConnection, *TestConnection) {
	connA := &TestConnection{ClientID: clientA, CounterpartyClientID: clientB}
	connB := &TestConnection{ClientID: clientB, CounterpartyClientID: clientA}

	require.NoError(coord.t, coord.ConnOpenInit(chainA, chainB, connA, connB))
	require.NoError(coord.t, coord.ConnOpenTry(chainB, chainA, connB, connA))
	require.NoError(coord.t, coord.ConnOpenAck(chainA, chainB, connA, connB))
	require.NoError(coord.t, coord.ConnOpenConfirm(chainB, chainA, connB, connA))

	return connA, connB
}

// CreateMockChannels constructs and executes channel handshake messages to create OPEN
// channels bound to the mock application module on both chains. This function expects
// the channels to be successfully opened otherwise testing will fail.
func (coord *Coordinator) CreateMockChannels(
	chainA, chainB *TestChain,
	connA, connB *TestConnection,
	order channel.Order,
) (TestChannel, TestChannel) {
	return coord.CreateChannel(chainA, chainB, connA, connB, mock.PortID, mock.PortID, order)
}

// CreateChannel constructs and executes channel handshake messages in order to create
// OPEN channels on chainA and chainB. The function expects the channels to be
// successfully opened otherwise testing will fail.
func (coord *Coordinator) CreateChannel(
	chainA, chainB *TestChain,
	connA, connB *TestConnection,
	sourcePortID, counterpartyPortID string,
	order channel.Order,
) (TestChannel, TestChannel) {
	channelA := TestChannel{PortID: sourcePortID, ClientID: connA.ClientID, CounterpartyClientID: connA.CounterpartyClientID}
	channelB := TestChannel{PortID: counterpartyPortID, ClientID: connB.ClientID, CounterpartyClientID: connB.CounterpartyClientID}

	require.NoError(coord.t, coord.ChanOpenInit(chainA, chainB, connA, &channelA, channelB, order))
	require.NoError(coord.t, coord.ChanOpenTry(chainB, chainA, connB, &channelB, channelA, order))
	require.NoError(coord.t, coord.ChanOpenAck(chainA, chainB, channelA, channelB))
	require.NoError(coord.t, coord.ChanOpenConfirm(chainB, chainA, channelB, channelA))

	connA.AddTestChannel(channelA)
	connB.AddTestChannel(channelB)
	return channelA, channelB
}

// ConnOpenInit initializes a connection on the source chain with the state INIT
// using the OpenInit handshake call. The identifier of the new connection is
// set on connection.
func (coord *Coordinator) ConnOpenInit(source, counterparty *TestChain, connection, counterpartyConnection *TestConnection) error {
	if err := source.ConnectionOpenInit(counterparty, connection, counterpartyConnection); err != nil {
		return err
	}
	coord.IncrementTime()

	// update source client on counterparty connection
	return coord.UpdateClient(counterparty, source, counterpartyConnection.ClientID)
}

// ConnOpenTry initializes a connection on the source chain with the state TRYOPEN
// using the OpenTry handshake call.
func (coord *Coordinator) ConnOpenTry(source, counterparty *TestChain, connection, counterpartyConnection *TestConnection) error {
	if err := source.ConnectionOpenTry(counterparty, connection, counterpartyConnection); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, counterpartyConnection.ClientID)
}

// ConnOpenAck initializes a connection on the source chain with the state OPEN
// using the OpenAck handshake call.
func (coord *Coordinator) ConnOpenAck(source, counterparty *TestChain, connection, counterpartyConnection *TestConnection) error {
	if err := source.ConnectionOpenAck(counterparty, connection, counterpartyConnection); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, counterpartyConnection.ClientID)
}

// ConnOpenConfirm initializes a connection on the source chain with the state OPEN
// using the OpenConfirm handshake call.
func (coord *Coordinator) ConnOpenConfirm(source, counterparty *TestChain, connection, counterpartyConnection *TestConnection) error {
	if err := source.ConnectionOpenConfirm(counterparty, connection, counterpartyConnection); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, counterpartyConnection.ClientID)
}

// ChanOpenInit initializes a channel on the source chain with the state INIT
// using the OpenInit handshake call.
func (coord *Coordinator) ChanOpenInit(
	source, counterparty *TestChain,
	connection *TestConnection,
	sourceChannel *TestChannel, counterpartyChannel TestChannel,
	order channel.Order,
) error {
	if err := source.ChanOpenInit(sourceChannel, counterpartyChannel, order, connection.ID); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, sourceChannel.CounterpartyClientID)
}

// ChanOpenTry initializes a channel on the source chain with the state TRYOPEN
// using the OpenTry handshake call.
func (coord *Coordinator) ChanOpenTry(
	source, counterparty *TestChain,
	connection *TestConnection,
	sourceChannel *TestChannel, counterpartyChannel TestChannel,
	order channel.Order,
) error {
	if err := source.ChanOpenTry(counterparty, sourceChannel, counterpartyChannel, order, connection.ID); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, sourceChannel.CounterpartyClientID)
}

// ChanOpenAck initializes a channel on the source chain with the state OPEN
// using the OpenAck handshake call.
func (coord *Coordinator) ChanOpenAck(source, counterparty *TestChain, sourceChannel, counterpartyChannel TestChannel) error {
	if err := source.ChanOpenAck(counterparty, sourceChannel, counterpartyChannel); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, sourceChannel.CounterpartyClientID)
}

// ChanOpenConfirm initializes a channel on the source chain with the state OPEN
// using the OpenConfirm handshake call.
func (coord *Coordinator) ChanOpenConfirm(source, counterparty *TestChain, sourceChannel, counterpartyChannel TestChannel) error {
	if err := source.ChanOpenConfirm(counterparty, sourceChannel, counterpartyChannel); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, sourceChannel.CounterpartyClientID)
}

// ChanCloseInit closes a channel on the source chain resulting in the channels state
// being set to CLOSED.
func (coord *Coordinator) ChanCloseInit(source, counterparty *TestChain, sourceChannel TestChannel) error {
	if err := source.ChanCloseInit(sourceChannel); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, sourceChannel.CounterpartyClientID)
}

// ChanCloseConfirm closes the channel on the source chain after its
// counterparty end was closed.
func (coord *Coordinator) ChanCloseConfirm(source, counterparty *TestChain, sourceChannel, counterpartyChannel TestChannel) error {
	if err := source.ChanCloseConfirm(counterparty, sourceChannel, counterpartyChannel); err != nil {
		return err
	}
	coord.IncrementTime()

	return coord.UpdateClient(counterparty, source, sourceChannel.CounterpartyClientID)
}

// SendPacket sends data from sourceChannel and updates the client of the
// source chain on the counterparty.
func (coord *Coordinator) SendPacket(
	source, counterparty *TestChain,
	sourceChannel, counterpartyChannel TestChannel,
	timeoutHeight client.Height, timeoutTimestamp uint64,
	data []byte,
) (channel.Packet, error) {
	packet, err := source.SendPacket(sourceChannel, counterpartyChannel, timeoutHeight, timeoutTimestamp, data)
	if err != nil {
		return channel.Packet{}, err
	}
	coord.IncrementTime()

	return packet, coord.UpdateClient(counterparty, source, sourceChannel.CounterpartyClientID)
}

// RelayPacket receives a channel packet on counterparty and acknowledges it on
// source. The acknowledgement written by the counterparty is returned, nil when
// the counterparty acknowledges asynchronously. The clients are updated as needed.
func (coord *Coordinator) RelayPacket(
	source, counterparty *TestChain,
	sourceChannel TestChannel,
	packet channel.Packet,
) ([]byte, error) {
	ack, err := coord.RecvPacket(source, counterparty, sourceChannel, packet)
	if err != nil || ack == nil {
		return ack, err
	}
	return ack, coord.AcknowledgePacket(source, counterparty, sourceChannel, packet, ack)
}

// RecvPacket receives a channel packet on the counterparty chain and updates
// the client on the source chain representing the counterparty. The
// acknowledgement written synchronously is returned.
func (coord *Coordinator) RecvPacket(
	source, counterparty *TestChain,
	sourceChannel TestChannel,
	packet channel.Packet,
) ([]byte, error) {
	// get proof of packet commitment on source
	packetKey := host.PacketCommitmentKey(packet.SourcePort, packet.SourceChannel, packet.Sequence)
	proof, proofHeight := source.QueryProof(packetKey)

	recvMsg := channel.NewMsgRecvPacket(packet, proof, proofHeight, counterparty.SenderAccount)

	// receive on counterparty and update source client
	res, err := coord.SendMsgs(counterparty, source, sourceChannel.ClientID, recvMsg)
	if err != nil {
		return nil, err
	}
	acks, err := channel.AcknowledgementsFromEvents(res.Events)
	if err != nil || len(acks) == 0 {
		return nil, err
	}
	return acks[0].Acknowledgement, nil
}

// AcknowledgePacket acknowledges on the source chain the packet received on
// the counterparty chain and updates the client on the counterparty representing
// the source chain.
func (coord *Coordinator) AcknowledgePacket(
	source, counterparty *TestChain,
	sourceChannel TestChannel,
	packet channel.Packet, ack []byte,
) error {
	// get proof of acknowledgement on counterparty
	packetKey := host.PacketAcknowledgementKey(packet.DestinationPort, packet.DestinationChannel, packet.Sequence)
	proof, proofHeight := counterparty.QueryProof(packetKey)

	ackMsg := channel.NewMsgAcknowledgement(packet, ack, proof, proofHeight, source.SenderAccount)
	_, err := coord.SendMsgs(source, counterparty, sourceChannel.CounterpartyClientID, ackMsg)
	return err
}

// TimeoutPacket times out on source a packet the counterparty never received.
// The client of the counterparty on source is updated first, so the proof is
// taken at the last committed block of the counterparty.
func (coord *Coordinator) TimeoutPacket(
	source, counterparty *TestChain,
	sourceChannel TestChannel,
	packet channel.Packet,
) error {
	if err := coord.UpdateClient(source, counterparty, sourceChannel.ClientID); err != nil {
		return err
	}
	proof, proofHeight, nextSequenceRecv := coord.unreceivedProof(source, counterparty, sourceChannel, packet)

	msg := channel.NewMsgTimeout(packet, nextSequenceRecv, proof, proofHeight, source.SenderAccount)
	_, err := coord.SendMsgs(source, counterparty, sourceChannel.CounterpartyClientID, msg)
	return err
}

// TimeoutOnClose times out on source a packet whose destination channel was
// closed before receiving it.
func (coord *Coordinator) TimeoutOnClose(
	source, counterparty *TestChain,
	sourceChannel, counterpartyChannel TestChannel,
	packet channel.Packet,
) error {
	if err := coord.UpdateClient(source, counterparty, sourceChannel.ClientID); err != nil {
		return err
	}
	proof, proofHeight, nextSequenceRecv := coord.unreceivedProof(source, counterparty, sourceChannel, packet)
	proofClosed, _ := counterparty.QueryProof(host.ChannelKey(counterpartyChannel.PortID, counterpartyChannel.ID))

	msg := channel.NewMsgTimeoutOnClose(packet, nextSequenceRecv, proof, proofClosed, proofHeight, source.SenderAccount)
	_, err := coord.SendMsgs(source, counterparty, sourceChannel.CounterpartyClientID, msg)
	return err
}

// unreceivedProof proves on counterparty that packet was not received: the
// receipt absence on unordered channels, the next receive sequence on ordered
// ones.
func (coord *Coordinator) unreceivedProof(
	source, counterparty *TestChain,
	sourceChannel TestChannel,
	packet channel.Packet,
) ([]byte, client.Height, uint64) {
	if source.GetChannel(sourceChannel).Ordering == channel.ORDERED {
		nextSequenceRecv, err := counterparty.App.QueryContext().NextSequenceRecv(packet.DestinationPort, packet.DestinationChannel)
		require.NoError(coord.t, err)
		proof, proofHeight := counterparty.QueryProof(host.NextSequenceRecvKey(packet.DestinationPort, packet.DestinationChannel))
		return proof, proofHeight, nextSequenceRecv
	}
	proof, proofHeight := counterparty.QueryProof(host.PacketReceiptKey(packet.DestinationPort, packet.DestinationChannel, packet.Sequence))
	return proof, proofHeight, packet.Sequence
}

// CommitBlock commits a block on the provided chains and then increments the global time.
//
// CONTRACT: the passed in list of indexes must not contain duplicates
func (coord *Coordinator) CommitBlock(chains ...*TestChain) {
	for _, chain := range chains {
		chain.NextBlock()
	}
	coord.IncrementTime()
}

// CommitNBlocks commits n blocks to state and updates the block height by 1 for each commit.
func (coord *Coordinator) CommitNBlocks(chain *TestChain, n uint64) {
	for i := uint64(0); i < n; i++ {
		chain.NextBlock()
		coord.IncrementTime()
	}
}

// IncrementTime iterates through all the TestChain's and increments their current header time
// by 5 seconds.
//
// CONTRACT: this function must be called after every commit on any TestChain.
func (coord *Coordinator) IncrementTime() {
	coord.IncrementTimeBy(timeIncrement)
}

// IncrementTimeBy iterates through all the TestChain's and increments their current header time
// by specified time.
func (coord *Coordinator) IncrementTimeBy(increment time.Duration) {
	for _, chain := range coord.Chains {
		chain.currentTime = chain.currentTime.Add(increment)
	}
}

// SendMsgs delivers the provided messages to the chain. The counterparty
// client is updated with the new source consensus state.
func (coord *Coordinator) SendMsgs(source, counterparty *TestChain, counterpartyClientID string, msgs ...core.Msg) (*sdk.Result, error) {
	res, err := source.SendMsgs(msgs...)
	if err != nil {
		return nil, err
	}
	coord.IncrementTime()

	// update source client on counterparty connection
	return res, coord.UpdateClient(counterparty, source, counterpartyClientID)
}
