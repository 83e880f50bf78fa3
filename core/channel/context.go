package channel

import (
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
)

// ValidationContext is the read capability the channel subsystem needs from the host.
type ValidationContext interface {
	connection.ValidationContext

	// ChannelEnd returns ErrChannelNotFound when the channel does not exist.
	ChannelEnd(portID, channelID string) (ChannelEnd, error)
	ChannelCounter() (uint64, error)
	// The sequence getters return ErrSequence*NotFound for unknown channels.
	NextSequenceSend(portID, channelID string) (uint64, error)
	NextSequenceRecv(portID, channelID string) (uint64, error)
	NextSequenceAck(portID, channelID string) (uint64, error)
	PacketCommitment(portID, channelID string, sequence uint64) ([]byte, bool)
	PacketReceipt(portID, channelID string, sequence uint64) bool
	// PacketAcknowledgement returns the acknowledgement commitment.
	PacketAcknowledgement(portID, channelID string, sequence uint64) ([]byte, bool)
}

// ExecutionContext is the write capability the channel subsystem needs from the host.
type ExecutionContext interface {
	ValidationContext
	connection.ExecutionContext

	SetChannel(portID, channelID string, channel ChannelEnd) error
	IncreaseChannelCounter() error
	SetNextSequenceSend(portID, channelID string, sequence uint64) error
	SetNextSequenceRecv(portID, channelID string, sequence uint64) error
	SetNextSequenceAck(portID, channelID string, sequence uint64) error
	SetPacketCommitment(portID, channelID string, sequence uint64, commitment []byte) error
	DeletePacketCommitment(portID, channelID string, sequence uint64) error
	SetPacketReceipt(portID, channelID string, sequence uint64) error
	SetPacketAcknowledgement(portID, channelID string, sequence uint64, ackCommitment []byte) error
}
