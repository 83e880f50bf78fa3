package keeper

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// receiptValue is stored for every packet received on an unordered channel.
var receiptValue = []byte{1}

func (c *Context) ChannelEnd(portID, channelID string) (channel.ChannelEnd, error) {
	bz := c.store.Get(host.ChannelKey(portID, channelID))
	if len(bz) == 0 {
		return channel.ChannelEnd{}, sdkerrors.Wrapf(channel.ErrChannelNotFound, "port %s channel %s", portID, channelID)
	}
	return channel.UnmarshalChannel(bz)
}

func (c *Context) SetChannel(portID, channelID string, ch channel.ChannelEnd) error {
	c.store.Set(host.ChannelKey(portID, channelID), ch.Marshal())
	return nil
}

func (c *Context) ChannelCounter() (uint64, error) {
	return c.getUint64([]byte(host.KeyNextChannelSequence)), nil
}

func (c *Context) IncreaseChannelCounter() error {
	c.setUint64([]byte(host.KeyNextChannelSequence), c.getUint64([]byte(host.KeyNextChannelSequence))+1)
	return nil
}

func (c *Context) sequence(key []byte, notFound error, portID, channelID string) (uint64, error) {
	if !c.store.Has(key) {
		return 0, sdkerrors.Wrapf(notFound, "port %s channel %s", portID, channelID)
	}
	return c.getUint64(key), nil
}

func (c *Context) NextSequenceSend(portID, channelID string) (uint64, error) {
	return c.sequence(host.NextSequenceSendKey(portID, channelID), channel.ErrSequenceSendNotFound, portID, channelID)
}

func (c *Context) NextSequenceRecv(portID, channelID string) (uint64, error) {
	return c.sequence(host.NextSequenceRecvKey(portID, channelID), channel.ErrSequenceReceiveNotFound, portID, channelID)
}

func (c *Context) NextSequenceAck(portID, channelID string) (uint64, error) {
	return c.sequence(host.NextSequenceAckKey(portID, channelID), channel.ErrSequenceAckNotFound, portID, channelID)
}

func (c *Context) SetNextSequenceSend(portID, channelID string, sequence uint64) error {
	c.setUint64(host.NextSequenceSendKey(portID, channelID), sequence)
	return nil
}

func (c *Context) SetNextSequenceRecv(portID, channelID string, sequence uint64) error {
	c.setUint64(host.NextSequenceRecvKey(portID, channelID), sequence)
	return nil
}

func (c *Context) SetNextSequenceAck(portID, channelID string, sequence uint64) error {
	c.setUint64(host.NextSequenceAckKey(portID, channelID), sequence)
	return nil
}

func (c *Context) PacketCommitment(portID, channelID string, sequence uint64) ([]byte, bool) {
	bz := c.store.Get(host.PacketCommitmentKey(portID, channelID, sequence))
	return bz, len(bz) != 0
}

func (c *Context) SetPacketCommitment(portID, channelID string, sequence uint64, commitment []byte) error {
	c.store.Set(host.PacketCommitmentKey(portID, channelID, sequence), commitment)
	return nil
}

func (c *Context) DeletePacketCommitment(portID, channelID string, sequence uint64) error {
	c.store.Delete(host.PacketCommitmentKey(portID, channelID, sequence))
	return nil
}

func (c *Context) PacketReceipt(portID, channelID string, sequence uint64) bool {
	return c.store.Has(host.PacketReceiptKey(portID, channelID, sequence))
}

func (c *Context) SetPacketReceipt(portID, channelID string, sequence uint64) error {
	c.store.Set(host.PacketReceiptKey(portID, channelID, sequence), receiptValue)
	return nil
}

func (c *Context) PacketAcknowledgement(portID, channelID string, sequence uint64) ([]byte, bool) {
	bz := c.store.Get(host.PacketAcknowledgementKey(portID, channelID, sequence))
	return bz, len(bz) != 0
}

func (c *Context) SetPacketAcknowledgement(portID, channelID string, sequence uint64, ackCommitment []byte) error {
	c.store.Set(host.PacketAcknowledgementKey(portID, channelID, sequence), ackCommitment)
	return nil
}
