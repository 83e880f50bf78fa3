package channel

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

var (
	timeoutHeight = client.NewHeight(1, 100)
	validPacket   = NewPacket([]byte("data"), 1, portID, channelID, counterpartyPortID, "channel-7", timeoutHeight, 0)
)

func TestCommitPacket(t *testing.T) {
	require := require.New(t)

	packet := NewPacket([]byte("data"), 1, portID, channelID, counterpartyPortID, "channel-7", timeoutHeight, 42)

	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[0:], 42)
	binary.BigEndian.PutUint64(buf[8:], 1)
	binary.BigEndian.PutUint64(buf[16:], 100)
	dataHash := sha256.Sum256([]byte("data"))
	expected := sha256.Sum256(append(buf, dataHash[:]...))

	require.Equal(expected[:], CommitPacket(packet))

	// the sequence and the identifiers are not committed, the path carries them
	other := packet
	other.Sequence = 2
	other.SourceChannel = "channel-1"
	require.Equal(CommitPacket(packet), CommitPacket(other))

	other = packet
	other.TimeoutTimestamp = 43
	require.NotEqual(CommitPacket(packet), CommitPacket(other))

	ackHash := sha256.Sum256([]byte("ack"))
	require.Equal(ackHash[:], CommitAcknowledgement([]byte("ack")))
}

func TestPacketValidateBasic(t *testing.T) {
	testCases := []struct {
		name     string
		malleate func(p *Packet)
		expErr   error
	}{
		{"valid packet", func(p *Packet) {}, nil},
		{"timestamp only", func(p *Packet) { p.TimeoutHeight = client.ZeroHeight(); p.TimeoutTimestamp = 10 }, nil},
		{"invalid source port", func(p *Packet) { p.SourcePort = "" }, nil},
		{"invalid source channel", func(p *Packet) { p.SourceChannel = "ch/1" }, nil},
		{"invalid destination port", func(p *Packet) { p.DestinationPort = "x" }, nil},
		{"invalid destination channel", func(p *Packet) { p.DestinationChannel = "" }, nil},
		{"zero sequence", func(p *Packet) { p.Sequence = 0 }, ErrInvalidPacket},
		{"no timeout", func(p *Packet) { p.TimeoutHeight = client.ZeroHeight() }, ErrInvalidTimeout},
		{"empty data", func(p *Packet) { p.Data = nil }, ErrInvalidPacket},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			packet := validPacket
			tc.malleate(&packet)
			err := packet.ValidateBasic()
			switch {
			case tc.name == "valid packet" || tc.name == "timestamp only":
				require.NoError(t, err)
			case tc.expErr != nil:
				require.ErrorIs(t, err, tc.expErr)
			default:
				require.Error(t, err)
			}
		})
	}
}

func TestPacketTimedOut(t *testing.T) {
	require := require.New(t)

	packet := NewPacket([]byte("data"), 1, portID, channelID, counterpartyPortID, "channel-7", timeoutHeight, 1000)

	require.False(packet.TimedOut(client.NewHeight(1, 99), 999))
	require.True(packet.TimedOut(client.NewHeight(1, 100), 999))
	require.True(packet.TimedOut(client.NewHeight(2, 1), 999), "a later revision is past the timeout height")
	require.True(packet.TimedOut(client.NewHeight(1, 1), 1000))

	heightOnly := packet
	heightOnly.TimeoutTimestamp = 0
	require.False(heightOnly.TimedOut(client.NewHeight(1, 99), 1<<62))

	timestampOnly := packet
	timestampOnly.TimeoutHeight = client.ZeroHeight()
	require.False(timestampOnly.TimedOut(client.NewHeight(10, 10), 999))
	require.True(timestampOnly.TimedOut(client.NewHeight(0, 1), 1000))
}
