package keeper

import (
	"fmt"

	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
)

const (
	packetEventKeyPrefix                = "/packets"
	packetAcknowledgementEventKeyPrefix = "/acks"
)

// HandlePacketEvent indexes the packets of send_packet events by their source
// port, channel and sequence.
func HandlePacketEvent(store storetypes.KVStore, events []abci.Event) (continue_ bool, err error) {
	packets, err := channel.PacketsFromEvents(channel.EventTypeSendPacket, events)
	if err != nil {
		return false, err
	}
	for _, p := range packets {
		store.Set(makePacketKey(packetEventKeyPrefix, p.SourcePort, p.SourceChannel, p.Sequence), p.Marshal())
	}
	return true, nil
}

// HandlePacketAcknowledgementEvent indexes the acknowledgements of
// write_acknowledgement events by the destination port, channel and sequence
// of their packet.
func HandlePacketAcknowledgementEvent(store storetypes.KVStore, events []abci.Event) (continue_ bool, err error) {
	acks, err := channel.AcknowledgementsFromEvents(events)
	if err != nil {
		return false, err
	}
	for _, a := range acks {
		p := a.Packet
		store.Set(makePacketKey(packetAcknowledgementEventKeyPrefix, p.DestinationPort, p.DestinationChannel, p.Sequence), a.Acknowledgement)
	}
	return true, nil
}

// QueryPacket returns an indexed packet sent from portID and channelID.
func QueryPacket(store storetypes.KVStore, portID, channelID string, sequence uint64) (channel.Packet, error) {
	bz := store.Get(makePacketKey(packetEventKeyPrefix, portID, channelID, sequence))
	if bz == nil {
		return channel.Packet{}, sdkerrors.Wrapf(channel.ErrPacketCommitmentNotFound, "no packet indexed for %s/%s/%d", portID, channelID, sequence)
	}
	return channel.UnmarshalPacket(bz)
}

// QueryPacketAcknowledgement returns the acknowledgement written on portID and
// channelID for the packet with sequence.
func QueryPacketAcknowledgement(store storetypes.KVStore, portID, channelID string, sequence uint64) ([]byte, error) {
	bz := store.Get(makePacketKey(packetAcknowledgementEventKeyPrefix, portID, channelID, sequence))
	if bz == nil {
		return nil, sdkerrors.Wrapf(channel.ErrInvalidAcknowledgement, "no acknowledgement indexed for %s/%s/%d", portID, channelID, sequence)
	}
	return bz, nil
}

func makePacketKey(keyPrefix string, portID, channelID string, sequence uint64) []byte {
	return []byte(fmt.Sprintf("%v/%v/%v/%v", keyPrefix, portID, channelID, sequence))
}
