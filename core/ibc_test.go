package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/crypto/tmhash"
	"go.uber.org/multierr"

	"github.com/hyperledger-labs/yui-ibc-core/core"
	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
	"github.com/hyperledger-labs/yui-ibc-core/core/port"
	attested "github.com/hyperledger-labs/yui-ibc-core/light-clients/attested/types"
	ibctesting "github.com/hyperledger-labs/yui-ibc-core/testing"
	"github.com/hyperledger-labs/yui-ibc-core/testing/mock"
)

var defaultTimeoutHeight = client.NewHeight(0, 10000)

func TestIBCTestSuite(t *testing.T) {
	suite.Run(t, new(IBCTestSuite))
}

type IBCTestSuite struct {
	suite.Suite

	coordinator *ibctesting.Coordinator

	// testing chains used for convenience and readability
	chainA *ibctesting.TestChain
	chainB *ibctesting.TestChain
}

func (suite *IBCTestSuite) SetupTest() {
	suite.coordinator = ibctesting.NewCoordinator(suite.T(), 2)
	suite.chainA = suite.coordinator.GetChain(ibctesting.GetChainID(0))
	suite.chainB = suite.coordinator.GetChain(ibctesting.GetChainID(1))
}

func (suite *IBCTestSuite) sendPacket(channelA, channelB ibctesting.TestChannel, data []byte) channel.Packet {
	packet, err := suite.coordinator.SendPacket(suite.chainA, suite.chainB, channelA, channelB, defaultTimeoutHeight, 0, data)
	suite.Require().NoError(err)
	return packet
}

func (suite *IBCTestSuite) TestHandshake() {
	connA, connB, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)

	endA := suite.chainA.GetConnection(connA)
	endB := suite.chainB.GetConnection(connB)
	suite.Require().Equal(connection.OPEN, endA.State)
	suite.Require().Equal(connection.OPEN, endB.State)
	suite.Require().Equal(connB.ID, endA.Counterparty.ConnectionID)
	suite.Require().Equal(connA.ID, endB.Counterparty.ConnectionID)
	suite.Require().Equal(connB.ClientID, endA.Counterparty.ClientID)
	suite.Require().Len(endA.Versions, 1)
	suite.Require().Equal(endA.Versions, endB.Versions)

	chA := suite.chainA.GetChannel(channelA)
	chB := suite.chainB.GetChannel(channelB)
	suite.Require().Equal(channel.OPEN, chA.State)
	suite.Require().Equal(channel.OPEN, chB.State)
	suite.Require().Equal(mock.Version, chA.Version)
	suite.Require().Equal(mock.Version, chB.Version)
	suite.Require().Equal(channelB.ID, chA.Counterparty.ChannelID)
	suite.Require().Equal(channelA.ID, chB.Counterparty.ChannelID)
	suite.Require().Equal([]string{connA.ID}, chA.ConnectionHops)

	// identifiers are allocated from per-chain counters
	suite.Require().Equal("connection-0", connA.ID)
	suite.Require().Equal("channel-0", channelA.ID)
}

func (suite *IBCTestSuite) TestConnOpenTryInvalidProof() {
	clientA, clientB := suite.coordinator.SetupClients(suite.chainA, suite.chainB)
	connA := &ibctesting.TestConnection{ClientID: clientA, CounterpartyClientID: clientB}
	connB := &ibctesting.TestConnection{ClientID: clientB, CounterpartyClientID: clientA}
	suite.Require().NoError(suite.coordinator.ConnOpenInit(suite.chainA, suite.chainB, connA, connB))

	counterpartyClient, proofClient := suite.chainA.QueryClientStateProof(clientA)
	proofConsensus, consensusHeight := suite.chainA.QueryConsensusStateProof(clientA)
	_, proofHeight := suite.chainA.QueryProof(host.ConnectionKey(connA.ID))

	// the client state proof does not prove the connection end
	msg := connection.NewMsgConnectionOpenTry(
		clientB, connA.ID, clientA, counterpartyClient, suite.chainA.GetPrefix(),
		connection.GetCompatibleVersions(), 0,
		proofClient, proofClient, proofConsensus,
		proofHeight, consensusHeight, ibctesting.DefaultSender,
	)
	_, err := suite.chainB.SendMsgs(msg)
	suite.Require().Error(err)
	suite.Require().True(errors.Is(err, connection.ErrConnectionProofVerificationFailed))
	suite.Require().Equal(core.ProofVerificationFailure, core.Classify(err))
}

func (suite *IBCTestSuite) TestRelayPacket() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)

	packet := suite.sendPacket(channelA, channelB, mock.MockPacketData)
	suite.Require().Equal(uint64(1), packet.Sequence)

	ack, err := suite.coordinator.RelayPacket(suite.chainA, suite.chainB, channelA, packet)
	suite.Require().NoError(err)
	suite.Require().Equal(mock.MockAcknowledgement.Acknowledgement(), ack)

	// receiver side
	suite.Require().Equal(channel.CommitAcknowledgement(ack), suite.chainB.GetAcknowledgement(packet))
	suite.Require().True(suite.chainB.App.QueryContext().PacketReceipt(packet.DestinationPort, packet.DestinationChannel, packet.Sequence))
	suite.Require().Equal(mock.MockPacketData, suite.chainB.GetModuleState(mock.ReceivedKey(channelB.ID, packet.Sequence)))

	// sender side
	_, found := suite.chainA.App.QueryContext().PacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence)
	suite.Require().False(found)
	suite.Require().Equal(ack, suite.chainA.GetModuleState(mock.AcknowledgedKey(channelA.ID, packet.Sequence)))

	// the packet and its acknowledgement are indexed
	res := suite.chainA.App.Query(abci.RequestQuery{Path: fmt.Sprintf("/custom/ibc/packet/%s/%s/%d", channelA.PortID, channelA.ID, packet.Sequence)})
	suite.Require().True(res.IsOK(), res.Log)
	suite.Require().Equal(packet.Marshal(), res.Value)
	res = suite.chainB.App.Query(abci.RequestQuery{Path: fmt.Sprintf("/custom/ibc/ack/%s/%s/%d", channelB.PortID, channelB.ID, packet.Sequence)})
	suite.Require().True(res.IsOK(), res.Log)
	suite.Require().Equal(ack, res.Value)
}

func (suite *IBCTestSuite) TestRelayPacketOrdered() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.ORDERED)

	packet1 := suite.sendPacket(channelA, channelB, mock.MockPacketData)
	packet2 := suite.sendPacket(channelA, channelB, mock.MockPacketData)

	// packet 2 cannot overtake packet 1
	_, err := suite.coordinator.RecvPacket(suite.chainA, suite.chainB, channelA, packet2)
	suite.Require().Error(err)
	suite.Require().True(errors.Is(err, channel.ErrOutOfOrderPacket))
	suite.Require().Equal(core.StateMismatch, core.Classify(err))

	for _, packet := range []channel.Packet{packet1, packet2} {
		_, err := suite.coordinator.RelayPacket(suite.chainA, suite.chainB, channelA, packet)
		suite.Require().NoError(err)
	}

	nextRecv, err := suite.chainB.App.QueryContext().NextSequenceRecv(channelB.PortID, channelB.ID)
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(3), nextRecv)
	nextAck, err := suite.chainA.App.QueryContext().NextSequenceAck(channelA.PortID, channelA.ID)
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(3), nextAck)
}

func (suite *IBCTestSuite) TestRecvPacketTwice() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)
	packet := suite.sendPacket(channelA, channelB, mock.MockPacketData)

	_, err := suite.coordinator.RecvPacket(suite.chainA, suite.chainB, channelA, packet)
	suite.Require().NoError(err)
	ack := suite.chainB.GetAcknowledgement(packet)

	suite.Require().NoError(suite.coordinator.UpdateClient(suite.chainB, suite.chainA, channelB.ClientID))
	_, err = suite.coordinator.RecvPacket(suite.chainA, suite.chainB, channelA, packet)
	suite.Require().Error(err)
	suite.Require().True(errors.Is(err, channel.ErrPacketAlreadyReceived))

	// the first receive is left as it was
	suite.Require().Equal(ack, suite.chainB.GetAcknowledgement(packet))
	suite.Require().True(suite.chainB.App.QueryContext().PacketReceipt(packet.DestinationPort, packet.DestinationChannel, packet.Sequence))
	suite.Require().Equal(mock.MockPacketData, suite.chainB.GetModuleState(mock.ReceivedKey(channelB.ID, packet.Sequence)))
}

func (suite *IBCTestSuite) TestAcknowledgePacketOlderProofHeight() {
	testCases := []struct {
		name   string
		offset uint64
	}{
		{"stored height", 0},
		{"no consensus state at the proof height", 2},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset
			_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)
			packet := suite.sendPacket(channelA, channelB, mock.MockPacketData)

			ack, err := suite.coordinator.RecvPacket(suite.chainA, suite.chainB, channelA, packet)
			suite.Require().NoError(err)
			proof, proofHeight := suite.chainB.QueryProof(host.PacketAcknowledgementKey(packet.DestinationPort, packet.DestinationChannel, packet.Sequence))

			// the client of chainB moves past the height of the proof
			suite.coordinator.CommitNBlocks(suite.chainB, 5)
			suite.Require().NoError(suite.coordinator.UpdateClient(suite.chainA, suite.chainB, channelA.ClientID))
			suite.Require().True(suite.chainA.GetClientState(channelA.ClientID).GetLatestHeight().GT(proofHeight))

			proofHeight = client.NewHeight(proofHeight.RevisionNumber, proofHeight.RevisionHeight+tc.offset)
			_, found := suite.chainA.GetConsensusState(channelA.ClientID, proofHeight)
			suite.Require().Equal(tc.offset == 0, found)

			_, err = suite.chainA.SendMsgs(channel.NewMsgAcknowledgement(packet, ack, proof, proofHeight, ibctesting.DefaultSender))
			suite.Require().NoError(err)
			_, found = suite.chainA.App.QueryContext().PacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence)
			suite.Require().False(found)
			suite.Require().Equal(ack, suite.chainA.GetModuleState(mock.AcknowledgedKey(channelA.ID, packet.Sequence)))
		})
	}
}

func (suite *IBCTestSuite) TestRecvPacketInvalidProof() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)
	packet := suite.sendPacket(channelA, channelB, mock.MockPacketData)

	// a proof of another key
	proof, proofHeight := suite.chainA.QueryProof(host.ChannelKey(channelA.PortID, channelA.ID))
	_, err := suite.chainB.SendMsgs(channel.NewMsgRecvPacket(packet, proof, proofHeight, ibctesting.DefaultSender))
	suite.Require().Error(err)
	suite.Require().Equal(core.ProofVerificationFailure, core.Classify(err))
	suite.Require().False(suite.chainB.App.QueryContext().PacketReceipt(packet.DestinationPort, packet.DestinationChannel, packet.Sequence))
}

func (suite *IBCTestSuite) TestErrorAcknowledgement() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)
	packet := suite.sendPacket(channelA, channelB, mock.MockFailPacketData)

	ackBz, err := suite.coordinator.RelayPacket(suite.chainA, suite.chainB, channelA, packet)
	suite.Require().NoError(err)

	ack, err := channel.UnmarshalAcknowledgement(ackBz)
	suite.Require().NoError(err)
	suite.Require().False(ack.Success())

	// the receipt and the acknowledgement are written, the module state is not
	suite.Require().True(suite.chainB.App.QueryContext().PacketReceipt(packet.DestinationPort, packet.DestinationChannel, packet.Sequence))
	suite.Require().Nil(suite.chainB.GetModuleState(mock.ReceivedKey(channelB.ID, packet.Sequence)))
	suite.Require().Equal(ackBz, suite.chainA.GetModuleState(mock.AcknowledgedKey(channelA.ID, packet.Sequence)))
}

func (suite *IBCTestSuite) TestAsyncAcknowledgement() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)
	packet := suite.sendPacket(channelA, channelB, mock.MockAsyncPacketData)

	ack, err := suite.coordinator.RecvPacket(suite.chainA, suite.chainB, channelA, packet)
	suite.Require().NoError(err)
	suite.Require().Nil(ack)
	_, found := suite.chainB.App.QueryContext().PacketAcknowledgement(packet.DestinationPort, packet.DestinationChannel, packet.Sequence)
	suite.Require().False(found)

	suite.Require().NoError(suite.chainB.WriteAcknowledgement(packet, mock.MockAcknowledgement))
	// a second acknowledgement is rejected
	suite.Require().Error(suite.chainB.WriteAcknowledgement(packet, mock.MockAcknowledgement))

	suite.Require().NoError(suite.coordinator.UpdateClient(suite.chainA, suite.chainB, channelA.ClientID))
	suite.Require().NoError(suite.coordinator.AcknowledgePacket(suite.chainA, suite.chainB, channelA, packet, mock.MockAcknowledgement.Acknowledgement()))
	suite.Require().Equal(mock.MockAcknowledgement.Acknowledgement(), suite.chainA.GetModuleState(mock.AcknowledgedKey(channelA.ID, packet.Sequence)))
}

func (suite *IBCTestSuite) TestRecvPacketCallbackFailure() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)
	packet := suite.sendPacket(channelA, channelB, mock.MockPacketData)

	suite.chainB.MockModule.Callbacks.OnRecvPacket = func(ctx port.Context, packet channel.Packet) (channel.AcknowledgementI, error) {
		ctx.ModuleStore(packet.DestinationPort).Set([]byte("partial"), []byte{1})
		return nil, mock.ErrRejected
	}
	_, err := suite.coordinator.RecvPacket(suite.chainA, suite.chainB, channelA, packet)
	suite.Require().Error(err)
	suite.Require().Equal(core.ModuleCallbackFailure, core.Classify(err))
	var cbErr *core.CallbackError
	suite.Require().True(errors.As(err, &cbErr))
	suite.Require().Equal(mock.PortID, cbErr.PortID)

	// nothing of the datagram is kept
	suite.Require().False(suite.chainB.App.QueryContext().PacketReceipt(packet.DestinationPort, packet.DestinationChannel, packet.Sequence))
	suite.Require().Nil(suite.chainB.GetModuleState([]byte("partial")))

	// the packet can still be received
	suite.chainB.MockModule.Callbacks.OnRecvPacket = nil
	_, err = suite.coordinator.RelayPacket(suite.chainA, suite.chainB, channelA, packet)
	suite.Require().NoError(err)
}

func (suite *IBCTestSuite) TestTimeoutPacket() {
	testCases := []struct {
		name  string
		order channel.Order
	}{
		{"unordered", channel.UNORDERED},
		{"ordered", channel.ORDERED},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset
			_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, tc.order)

			timeoutHeight := suite.chainB.LastHeader.Height.Increment().Increment().Increment()
			packet, err := suite.coordinator.SendPacket(suite.chainA, suite.chainB, channelA, channelB, timeoutHeight, 0, mock.MockPacketData)
			suite.Require().NoError(err)

			// too early
			err = suite.coordinator.TimeoutPacket(suite.chainA, suite.chainB, channelA, packet)
			suite.Require().True(errors.Is(err, channel.ErrTimeoutNotReached))
			_, found := suite.chainA.App.QueryContext().PacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence)
			suite.Require().True(found)

			suite.coordinator.CommitNBlocks(suite.chainB, 3)

			// the packet can no longer be received
			_, err = suite.coordinator.RecvPacket(suite.chainA, suite.chainB, channelA, packet)
			suite.Require().True(errors.Is(err, channel.ErrPacketTimedOut))

			suite.Require().NoError(suite.coordinator.TimeoutPacket(suite.chainA, suite.chainB, channelA, packet))
			suite.Require().Equal([]byte{1}, suite.chainA.GetModuleState(mock.TimedOutKey(channelA.ID, packet.Sequence)))
			_, found = suite.chainA.App.QueryContext().PacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence)
			suite.Require().False(found)

			expectedState := channel.OPEN
			if tc.order == channel.ORDERED {
				expectedState = channel.CLOSED
			}
			suite.Require().Equal(expectedState, suite.chainA.GetChannel(channelA).State)
		})
	}
}

func (suite *IBCTestSuite) TestTimeoutPacketStaleProof() {
	testCases := []struct {
		name  string
		order channel.Order
	}{
		{"unordered", channel.UNORDERED},
		{"ordered", channel.ORDERED},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			suite.SetupTest() // reset
			_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, tc.order)

			last := suite.chainB.LastHeader.Height
			timeoutHeight := client.NewHeight(last.RevisionNumber, last.RevisionHeight+5)
			packet, err := suite.coordinator.SendPacket(suite.chainA, suite.chainB, channelA, channelB, timeoutHeight, 0, mock.MockPacketData)
			suite.Require().NoError(err)
			proofCommitment, commitmentHeight := suite.chainA.QueryProof(host.PacketCommitmentKey(packet.SourcePort, packet.SourceChannel, packet.Sequence))

			// chainB has not received the packet at the height of this proof
			suite.Require().NoError(suite.coordinator.UpdateClient(suite.chainA, suite.chainB, channelA.ClientID))
			var (
				staleProof       []byte
				staleHeight      client.Height
				nextSequenceRecv = packet.Sequence
			)
			if tc.order == channel.ORDERED {
				staleProof, staleHeight = suite.chainB.QueryProof(host.NextSequenceRecvKey(packet.DestinationPort, packet.DestinationChannel))
			} else {
				staleProof, staleHeight = suite.chainB.QueryProof(host.PacketReceiptKey(packet.DestinationPort, packet.DestinationChannel, packet.Sequence))
			}
			suite.Require().True(staleHeight.LT(timeoutHeight))

			// chainB receives the packet before the timeout
			_, err = suite.chainB.SendMsgs(channel.NewMsgRecvPacket(packet, proofCommitment, commitmentHeight, ibctesting.DefaultSender))
			suite.Require().NoError(err)

			suite.coordinator.CommitNBlocks(suite.chainB, 10)
			suite.Require().NoError(suite.coordinator.UpdateClient(suite.chainA, suite.chainB, channelA.ClientID))
			_, found := suite.chainA.GetConsensusState(channelA.ClientID, timeoutHeight)
			suite.Require().False(found)

			// the stale proof claims a height past the timeout
			msg := channel.NewMsgTimeout(packet, nextSequenceRecv, staleProof, timeoutHeight, ibctesting.DefaultSender)
			_, err = suite.chainA.SendMsgs(msg)
			suite.Require().True(errors.Is(err, channel.ErrTimeoutNotReached), err)

			_, found = suite.chainA.App.QueryContext().PacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence)
			suite.Require().True(found)
			suite.Require().Nil(suite.chainA.GetModuleState(mock.TimedOutKey(channelA.ID, packet.Sequence)))
			suite.Require().Equal(channel.OPEN, suite.chainA.GetChannel(channelA).State)

			// the packet is still acknowledged
			suite.Require().NoError(suite.coordinator.AcknowledgePacket(suite.chainA, suite.chainB, channelA, packet, mock.MockAcknowledgement.Acknowledgement()))
		})
	}
}

func (suite *IBCTestSuite) TestTimeoutOnClose() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)
	packet := suite.sendPacket(channelA, channelB, mock.MockPacketData)

	suite.Require().NoError(suite.coordinator.ChanCloseInit(suite.chainB, suite.chainA, channelB))
	suite.Require().NoError(suite.coordinator.TimeoutOnClose(suite.chainA, suite.chainB, channelA, channelB, packet))

	suite.Require().Equal([]byte{1}, suite.chainA.GetModuleState(mock.TimedOutKey(channelA.ID, packet.Sequence)))
	_, found := suite.chainA.App.QueryContext().PacketCommitment(packet.SourcePort, packet.SourceChannel, packet.Sequence)
	suite.Require().False(found)
}

func (suite *IBCTestSuite) TestChannelClose() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)

	suite.Require().NoError(suite.coordinator.ChanCloseInit(suite.chainA, suite.chainB, channelA))
	suite.Require().Equal(channel.CLOSED, suite.chainA.GetChannel(channelA).State)

	// closing twice is rejected
	suite.Require().Error(suite.chainA.ChanCloseInit(channelA))

	suite.Require().NoError(suite.coordinator.ChanCloseConfirm(suite.chainB, suite.chainA, channelB, channelA))
	suite.Require().Equal(channel.CLOSED, suite.chainB.GetChannel(channelB).State)

	_, err := suite.chainA.SendPacket(channelA, channelB, defaultTimeoutHeight, 0, mock.MockPacketData)
	suite.Require().True(errors.Is(err, channel.ErrInvalidChannelState))
}

func (suite *IBCTestSuite) TestMisbehaviourAndRecovery() {
	clientA, _ := suite.coordinator.SetupClients(suite.chainA, suite.chainB)

	trustedHeight := suite.chainA.GetClientState(clientA).GetLatestHeight()
	height := suite.chainB.LastHeader.Height.Increment()
	timestamp := suite.chainB.CurrentTime()
	header1, err := suite.chainB.Attestor.Attest(height, trustedHeight, timestamp, tmhash.Sum([]byte("fork-1")))
	suite.Require().NoError(err)
	header2, err := suite.chainB.Attestor.Attest(height, trustedHeight, timestamp, tmhash.Sum([]byte("fork-2")))
	suite.Require().NoError(err)

	msg := client.NewMsgSubmitMisbehaviour(clientA, attested.NewMisbehaviour(header1, header2), ibctesting.DefaultSender)
	_, err = suite.chainA.SendMsgs(msg)
	suite.Require().NoError(err)
	suite.Require().Equal(client.Frozen, suite.chainA.ClientStatus(clientA))

	// a frozen client accepts no updates
	suite.coordinator.CommitBlock(suite.chainB)
	err = suite.coordinator.UpdateClient(suite.chainA, suite.chainB, clientA)
	suite.Require().True(errors.Is(err, client.ErrClientFrozen))
	suite.Require().Equal(core.ClientFault, core.Classify(err))

	// a frozen client cannot substitute itself
	suite.Require().Error(suite.chainA.App.RecoverClient(clientA, clientA))

	substitute, err := suite.coordinator.CreateClient(suite.chainA, suite.chainB)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.chainA.App.RecoverClient(clientA, substitute))
	suite.chainA.NextBlock()

	suite.Require().Equal(client.Active, suite.chainA.ClientStatus(clientA))
	suite.Require().Equal(suite.chainA.GetClientState(substitute).GetLatestHeight(), suite.chainA.GetClientState(clientA).GetLatestHeight())

	suite.coordinator.CommitBlock(suite.chainB)
	suite.Require().NoError(suite.coordinator.UpdateClient(suite.chainA, suite.chainB, clientA))
	suite.Require().Equal(suite.chainB.LastHeader.Height, suite.chainA.GetClientState(clientA).GetLatestHeight())
}

func (suite *IBCTestSuite) TestConflictingUpdateFreezesClient() {
	clientA, _ := suite.coordinator.SetupClients(suite.chainA, suite.chainB)
	trustedHeight := suite.chainA.GetClientState(clientA).GetLatestHeight()
	suite.coordinator.CommitBlock(suite.chainB)
	suite.Require().NoError(suite.coordinator.UpdateClient(suite.chainA, suite.chainB, clientA))

	// a second header for the latest height with another root
	last := suite.chainB.LastHeader
	header, err := suite.chainB.Attestor.Attest(last.Height, trustedHeight, last.Time, tmhash.Sum([]byte("fork")))
	suite.Require().NoError(err)

	_, err = suite.chainA.SendMsgs(client.NewMsgUpdateClient(clientA, header, ibctesting.DefaultSender))
	suite.Require().NoError(err)
	suite.Require().Equal(client.Frozen, suite.chainA.ClientStatus(clientA))
}

func (suite *IBCTestSuite) TestClientExpiry() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)

	suite.coordinator.IncrementTimeBy(ibctesting.TrustingPeriod)
	suite.coordinator.CommitBlock(suite.chainA, suite.chainB)

	err := suite.coordinator.UpdateClient(suite.chainA, suite.chainB, channelA.ClientID)
	suite.Require().True(errors.Is(err, client.ErrClientExpired))

	_, err = suite.chainA.SendPacket(channelA, channelB, defaultTimeoutHeight, 0, mock.MockPacketData)
	suite.Require().True(errors.Is(err, client.ErrClientNotActive))
}

func (suite *IBCTestSuite) TestDeliverBatch() {
	_, _, channelA, channelB := suite.coordinator.Setup(suite.chainA, suite.chainB, channel.UNORDERED)
	packet1 := suite.sendPacket(channelA, channelB, mock.MockPacketData)
	packet2 := suite.sendPacket(channelA, channelB, mock.MockPacketData)

	proof1, proofHeight := suite.chainA.QueryProof(host.PacketCommitmentKey(packet1.SourcePort, packet1.SourceChannel, packet1.Sequence))
	proof2, _ := suite.chainA.QueryProof(host.PacketCommitmentKey(packet2.SourcePort, packet2.SourceChannel, packet2.Sequence))
	msgs := []core.Msg{
		channel.NewMsgRecvPacket(packet1, proof1, proofHeight, ibctesting.DefaultSender),
		channel.NewMsgRecvPacket(packet1, proof1, proofHeight, ibctesting.DefaultSender),
		channel.NewMsgRecvPacket(packet2, nil, proofHeight, ibctesting.DefaultSender),
		channel.NewMsgRecvPacket(packet2, proof2, proofHeight, ibctesting.DefaultSender),
	}

	results, err := suite.chainB.App.DeliverBatch(context.Background(), msgs)
	suite.chainB.NextBlock()
	suite.Require().Len(results, len(msgs))
	suite.Require().NotNil(results[0])
	suite.Require().Nil(results[1])
	suite.Require().Nil(results[2])
	suite.Require().NotNil(results[3])

	errs := multierr.Errors(err)
	suite.Require().Len(errs, 2)
	suite.Require().True(errors.Is(errs[0], channel.ErrPacketAlreadyReceived))
	suite.Require().Equal(core.ProtocolViolation, core.Classify(errs[1]))

	ctx := suite.chainB.App.QueryContext()
	suite.Require().True(ctx.PacketReceipt(packet1.DestinationPort, packet1.DestinationChannel, packet1.Sequence))
	suite.Require().True(ctx.PacketReceipt(packet2.DestinationPort, packet2.DestinationChannel, packet2.Sequence))

	// acknowledgements of the committed datagrams are indexed
	res := suite.chainB.App.Query(abci.RequestQuery{Path: fmt.Sprintf("/custom/ibc/ack/%s/%s/%d", channelB.PortID, channelB.ID, packet2.Sequence)})
	suite.Require().True(res.IsOK(), res.Log)
	suite.Require().Equal(mock.MockAcknowledgement.Acknowledgement(), res.Value)
}

func (suite *IBCTestSuite) TestDeliverBatchCanceled() {
	clientA, _ := suite.coordinator.SetupClients(suite.chainA, suite.chainB)
	suite.coordinator.CommitBlock(suite.chainB)
	header, err := suite.chainA.ConstructUpdateClientHeader(suite.chainB, clientA)
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := suite.chainA.App.DeliverBatch(ctx, []core.Msg{client.NewMsgUpdateClient(clientA, header, ibctesting.DefaultSender)})
	suite.chainA.NextBlock()
	suite.Require().True(errors.Is(err, context.Canceled))
	suite.Require().Nil(results[0])
	suite.Require().NotEqual(suite.chainB.LastHeader.Height, suite.chainA.GetClientState(clientA).GetLatestHeight())
}
