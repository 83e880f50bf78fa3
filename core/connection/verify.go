package connection

import (
	"math"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// VerifyClientState verifies a proof of the client state of the chain on
// which the connection end lives, as stored on the counterparty chain.
func (k Keeper) VerifyClientState(
	ctx ValidationContext,
	connection ConnectionEnd,
	height client.Height,
	proof []byte,
	clientState client.ClientState,
) error {
	path, err := commitment.ApplyPrefix(connection.Counterparty.Prefix, host.FullClientStatePath(connection.Counterparty.ClientID))
	if err != nil {
		return err
	}
	if err := k.clientKeeper.VerifyMembership(ctx, connection.ClientID, height, 0, 0, proof, path, client.MarshalClientState(clientState)); err != nil {
		return sdkerrors.Wrapf(err, "failed client state verification for target client: %s", connection.ClientID)
	}
	return nil
}

// VerifyClientConsensusState verifies a proof of the consensus state of the
// host at consensusHeight, as stored by the counterparty's client of the host.
func (k Keeper) VerifyClientConsensusState(
	ctx ValidationContext,
	connection ConnectionEnd,
	height client.Height,
	consensusHeight client.Height,
	proof []byte,
	consensusState client.ConsensusState,
) error {
	path, err := commitment.ApplyPrefix(
		connection.Counterparty.Prefix,
		host.FullConsensusStatePath(connection.Counterparty.ClientID, consensusHeight.RevisionNumber, consensusHeight.RevisionHeight),
	)
	if err != nil {
		return err
	}
	if err := k.clientKeeper.VerifyMembership(ctx, connection.ClientID, height, 0, 0, proof, path, client.MarshalConsensusState(consensusState)); err != nil {
		return sdkerrors.Wrapf(err, "failed consensus state verification for client (%s)", connection.ClientID)
	}
	return nil
}

// VerifyConnectionState verifies a proof of the connection end stored on the
// counterparty under connectionID.
func (k Keeper) VerifyConnectionState(
	ctx ValidationContext,
	connection ConnectionEnd,
	height client.Height,
	proof []byte,
	connectionID string,
	counterpartyConnection ConnectionEnd, // opposite connection
) error {
	path, err := commitment.ApplyPrefix(connection.Counterparty.Prefix, host.ConnectionPath(connectionID))
	if err != nil {
		return err
	}
	if err := k.clientKeeper.VerifyMembership(ctx, connection.ClientID, height, 0, 0, proof, path, counterpartyConnection.Marshal()); err != nil {
		return sdkerrors.Wrapf(err, "failed connection state verification for client (%s)", connection.ClientID)
	}
	return nil
}

// VerifyChannelState verifies a proof of the encoded channel end stored on
// the counterparty under the given port and channel.
func (k Keeper) VerifyChannelState(
	ctx ValidationContext,
	connection ConnectionEnd,
	height client.Height,
	proof []byte,
	portID,
	channelID string,
	channel []byte,
) error {
	path, err := commitment.ApplyPrefix(connection.Counterparty.Prefix, host.ChannelPath(portID, channelID))
	if err != nil {
		return err
	}
	if err := k.clientKeeper.VerifyMembership(ctx, connection.ClientID, height, 0, 0, proof, path, channel); err != nil {
		return sdkerrors.Wrapf(err, "failed channel state verification for client (%s)", connection.ClientID)
	}
	return nil
}

// VerifyPacketCommitment verifies a proof of an outgoing packet commitment at
// the specified port, channel and sequence. The connection delay applies.
func (k Keeper) VerifyPacketCommitment(
	ctx ValidationContext,
	connection ConnectionEnd,
	height client.Height,
	proof []byte,
	portID,
	channelID string,
	sequence uint64,
	commitmentBytes []byte,
) error {
	path, err := commitment.ApplyPrefix(connection.Counterparty.Prefix, host.PacketCommitmentPath(portID, channelID, sequence))
	if err != nil {
		return err
	}
	if err := k.clientKeeper.VerifyMembership(ctx, connection.ClientID, height, connection.DelayPeriod, k.getBlockDelay(connection), proof, path, commitmentBytes); err != nil {
		return sdkerrors.Wrapf(err, "failed packet commitment verification for client (%s)", connection.ClientID)
	}
	return nil
}

// VerifyPacketAcknowledgement verifies a proof of an incoming packet
// acknowledgement at the specified port, channel and sequence.
func (k Keeper) VerifyPacketAcknowledgement(
	ctx ValidationContext,
	connection ConnectionEnd,
	height client.Height,
	proof []byte,
	portID,
	channelID string,
	sequence uint64,
	ackCommitment []byte,
) error {
	path, err := commitment.ApplyPrefix(connection.Counterparty.Prefix, host.PacketAcknowledgementPath(portID, channelID, sequence))
	if err != nil {
		return err
	}
	if err := k.clientKeeper.VerifyMembership(ctx, connection.ClientID, height, connection.DelayPeriod, k.getBlockDelay(connection), proof, path, ackCommitment); err != nil {
		return sdkerrors.Wrapf(err, "failed packet acknowledgement verification for client (%s)", connection.ClientID)
	}
	return nil
}

// VerifyPacketReceiptAbsence verifies a proof that no receipt is stored for
// the specified port, channel and sequence.
func (k Keeper) VerifyPacketReceiptAbsence(
	ctx ValidationContext,
	connection ConnectionEnd,
	height client.Height,
	proof []byte,
	portID,
	channelID string,
	sequence uint64,
) error {
	path, err := commitment.ApplyPrefix(connection.Counterparty.Prefix, host.PacketReceiptPath(portID, channelID, sequence))
	if err != nil {
		return err
	}
	if err := k.clientKeeper.VerifyNonMembership(ctx, connection.ClientID, height, connection.DelayPeriod, k.getBlockDelay(connection), proof, path); err != nil {
		return sdkerrors.Wrapf(err, "failed packet receipt absence verification for client (%s)", connection.ClientID)
	}
	return nil
}

// VerifyNextSequenceRecv verifies a proof of the next sequence number to be
// received of the specified channel.
func (k Keeper) VerifyNextSequenceRecv(
	ctx ValidationContext,
	connection ConnectionEnd,
	height client.Height,
	proof []byte,
	portID,
	channelID string,
	nextSequenceRecv uint64,
) error {
	path, err := commitment.ApplyPrefix(connection.Counterparty.Prefix, host.NextSequenceRecvPath(portID, channelID))
	if err != nil {
		return err
	}
	if err := k.clientKeeper.VerifyMembership(ctx, connection.ClientID, height, connection.DelayPeriod, k.getBlockDelay(connection), proof, path, sdk.Uint64ToBigEndian(nextSequenceRecv)); err != nil {
		return sdkerrors.Wrapf(err, "failed next sequence receive verification for client (%s)", connection.ClientID)
	}
	return nil
}

// getBlockDelay converts the time delay of the connection into a number of
// blocks, rounding up.
func (k Keeper) getBlockDelay(connection ConnectionEnd) uint64 {
	expectedTimePerBlock := k.params.MaxExpectedTimePerBlock
	if expectedTimePerBlock <= 0 {
		return 0
	}
	return uint64(math.Ceil(float64(connection.DelayPeriod) / float64(expectedTimePerBlock)))
}
