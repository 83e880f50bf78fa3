package host

import "fmt"

// StoreKey is the name the IBC store is mounted under, and the default commitment prefix.
const StoreKey = "ibc"

// KeyPrefixes of the ICS-24 provable paths. The layout is a cross-chain
// compatibility contract and must not change.
const (
	KeyClientStorePrefix      = "clients"
	KeyClientState            = "clientState"
	KeyConsensusStatePrefix   = "consensusStates"
	KeyConnectionPrefix       = "connections"
	KeyChannelEndPrefix       = "channelEnds"
	KeyChannelPrefix          = "channels"
	KeyPortPrefix             = "ports"
	KeySequencePrefix         = "sequences"
	KeyNextSeqSendPrefix      = "nextSequenceSend"
	KeyNextSeqRecvPrefix      = "nextSequenceRecv"
	KeyNextSeqAckPrefix       = "nextSequenceAck"
	KeyPacketCommitmentPrefix = "commitments"
	KeyPacketAckPrefix        = "acks"
	KeyPacketReceiptPrefix    = "receipts"
)

// Non-provable bookkeeping keys.
const (
	KeyNextClientSequence     = "nextClientSequence"
	KeyNextConnectionSequence = "nextConnectionSequence"
	KeyNextChannelSequence    = "nextChannelSequence"
)

// FullClientPath returns the full path of a key in the store of clientID.
func FullClientPath(clientID string, path string) string {
	return fmt.Sprintf("%s/%s/%s", KeyClientStorePrefix, clientID, path)
}

// FullClientKey returns FullClientPath as bytes.
func FullClientKey(clientID string, path []byte) []byte {
	return []byte(FullClientPath(clientID, string(path)))
}

// FullClientStatePath returns "clients/{clientID}/clientState".
func FullClientStatePath(clientID string) string {
	return FullClientPath(clientID, KeyClientState)
}

func FullClientStateKey(clientID string) []byte {
	return []byte(FullClientStatePath(clientID))
}

// ClientStateKey is the client state key inside a client scoped store.
func ClientStateKey() []byte {
	return []byte(KeyClientState)
}

// ConsensusStatePath returns the suffix store path of a consensus state.
func ConsensusStatePath(revisionNumber, revisionHeight uint64) string {
	return fmt.Sprintf("%s/%d-%d", KeyConsensusStatePrefix, revisionNumber, revisionHeight)
}

// ConsensusStateKey is the consensus state key inside a client scoped store.
func ConsensusStateKey(revisionNumber, revisionHeight uint64) []byte {
	return []byte(ConsensusStatePath(revisionNumber, revisionHeight))
}

// FullConsensusStatePath returns "clients/{clientID}/consensusStates/{rev}-{height}".
func FullConsensusStatePath(clientID string, revisionNumber, revisionHeight uint64) string {
	return FullClientPath(clientID, ConsensusStatePath(revisionNumber, revisionHeight))
}

func FullConsensusStateKey(clientID string, revisionNumber, revisionHeight uint64) []byte {
	return []byte(FullConsensusStatePath(clientID, revisionNumber, revisionHeight))
}

// ClientConnectionsPath returns "clients/{clientID}/connections".
func ClientConnectionsPath(clientID string) string {
	return FullClientPath(clientID, KeyConnectionPrefix)
}

func ClientConnectionsKey(clientID string) []byte {
	return []byte(ClientConnectionsPath(clientID))
}

// ConnectionPath returns "connections/{connectionID}".
func ConnectionPath(connectionID string) string {
	return fmt.Sprintf("%s/%s", KeyConnectionPrefix, connectionID)
}

func ConnectionKey(connectionID string) []byte {
	return []byte(ConnectionPath(connectionID))
}

func channelPath(portID, channelID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", KeyPortPrefix, portID, KeyChannelPrefix, channelID)
}

// ChannelPath returns "channelEnds/ports/{portID}/channels/{channelID}".
func ChannelPath(portID, channelID string) string {
	return fmt.Sprintf("%s/%s", KeyChannelEndPrefix, channelPath(portID, channelID))
}

func ChannelKey(portID, channelID string) []byte {
	return []byte(ChannelPath(portID, channelID))
}

func NextSequenceSendPath(portID, channelID string) string {
	return fmt.Sprintf("%s/%s", KeyNextSeqSendPrefix, channelPath(portID, channelID))
}

func NextSequenceSendKey(portID, channelID string) []byte {
	return []byte(NextSequenceSendPath(portID, channelID))
}

func NextSequenceRecvPath(portID, channelID string) string {
	return fmt.Sprintf("%s/%s", KeyNextSeqRecvPrefix, channelPath(portID, channelID))
}

func NextSequenceRecvKey(portID, channelID string) []byte {
	return []byte(NextSequenceRecvPath(portID, channelID))
}

func NextSequenceAckPath(portID, channelID string) string {
	return fmt.Sprintf("%s/%s", KeyNextSeqAckPrefix, channelPath(portID, channelID))
}

func NextSequenceAckKey(portID, channelID string) []byte {
	return []byte(NextSequenceAckPath(portID, channelID))
}

func sequencePath(sequence uint64) string {
	return fmt.Sprintf("%s/%d", KeySequencePrefix, sequence)
}

// PacketCommitmentPrefixPath returns the path every commitment of a channel lives under.
func PacketCommitmentPrefixPath(portID, channelID string) string {
	return fmt.Sprintf("%s/%s/%s", KeyPacketCommitmentPrefix, channelPath(portID, channelID), KeySequencePrefix)
}

// PacketCommitmentPath returns "commitments/ports/{p}/channels/{c}/sequences/{seq}".
func PacketCommitmentPath(portID, channelID string, sequence uint64) string {
	return fmt.Sprintf("%s/%s/%s", KeyPacketCommitmentPrefix, channelPath(portID, channelID), sequencePath(sequence))
}

func PacketCommitmentKey(portID, channelID string, sequence uint64) []byte {
	return []byte(PacketCommitmentPath(portID, channelID, sequence))
}

// PacketAcknowledgementPath returns "acks/ports/{p}/channels/{c}/sequences/{seq}".
func PacketAcknowledgementPath(portID, channelID string, sequence uint64) string {
	return fmt.Sprintf("%s/%s/%s", KeyPacketAckPrefix, channelPath(portID, channelID), sequencePath(sequence))
}

func PacketAcknowledgementKey(portID, channelID string, sequence uint64) []byte {
	return []byte(PacketAcknowledgementPath(portID, channelID, sequence))
}

// PacketReceiptPath returns "receipts/ports/{p}/channels/{c}/sequences/{seq}".
func PacketReceiptPath(portID, channelID string, sequence uint64) string {
	return fmt.Sprintf("%s/%s/%s", KeyPacketReceiptPrefix, channelPath(portID, channelID), sequencePath(sequence))
}

func PacketReceiptKey(portID, channelID string, sequence uint64) []byte {
	return []byte(PacketReceiptPath(portID, channelID, sequence))
}
