package host

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentifierValidators(t *testing.T) {
	cases := []struct {
		name  string
		fn    ValidateFn
		id    string
		valid bool
	}{
		{"valid client", ClientIdentifierValidator, "xx-attested-0", true},
		{"client too short", ClientIdentifierValidator, "client", false},
		{"client with separator", ClientIdentifierValidator, "xx/attested-0", false},
		{"client blank", ClientIdentifierValidator, "   ", false},
		{"client too long", ClientIdentifierValidator, strings.Repeat("a", 65), false},
		{"valid connection", ConnectionIdentifierValidator, "connection-0", true},
		{"connection too short", ConnectionIdentifierValidator, "conn-0", false},
		{"valid channel", ChannelIdentifierValidator, "channel-10", true},
		{"channel bad charset", ChannelIdentifierValidator, "channel-1!", false},
		{"valid port", PortIdentifierValidator, "transfer", true},
		{"port with brackets", PortIdentifierValidator, "wasm.[abc]<x>", true},
		{"port too short", PortIdentifierValidator, "p", false},
		{"port max length", PortIdentifierValidator, strings.Repeat("p", 128), true},
	}
	for _, tc := range cases {
		err := tc.fn(tc.id)
		if tc.valid {
			require.NoError(t, err, tc.name)
		} else {
			require.ErrorIs(t, err, ErrInvalidID, tc.name)
		}
	}
}

func TestClientTypeValidator(t *testing.T) {
	require := require.New(t)

	require.NoError(ClientTypeValidator("xx-attested"))
	require.Error(ClientTypeValidator(""))
	require.Error(ClientTypeValidator("bad-"))
	require.Error(ClientTypeValidator("bad/type"))
}

func TestParseIdentifiers(t *testing.T) {
	require := require.New(t)

	id := FormatClientIdentifier("xx-attested", 12)
	require.Equal("xx-attested-12", id)
	clientType, seq, err := ParseClientIdentifier(id)
	require.NoError(err)
	require.Equal("xx-attested", clientType)
	require.Equal(uint64(12), seq)

	_, _, err = ParseClientIdentifier("attested-")
	require.Error(err)
	_, _, err = ParseClientIdentifier("attested-01")
	require.Error(err)

	seq, err = ParseConnectionSequence(FormatConnectionIdentifier(7))
	require.NoError(err)
	require.Equal(uint64(7), seq)
	_, err = ParseConnectionSequence("channel-7")
	require.Error(err)

	seq, err = ParseChannelSequence(FormatChannelIdentifier(3))
	require.NoError(err)
	require.Equal(uint64(3), seq)
}

func TestPaths(t *testing.T) {
	require := require.New(t)

	require.Equal("clients/xx-attested-0/clientState", FullClientStatePath("xx-attested-0"))
	require.Equal("clients/xx-attested-0/consensusStates/1-20", FullConsensusStatePath("xx-attested-0", 1, 20))
	require.Equal("clients/xx-attested-0/connections", ClientConnectionsPath("xx-attested-0"))
	require.Equal("connections/connection-0", ConnectionPath("connection-0"))
	require.Equal("channelEnds/ports/transfer/channels/channel-0", ChannelPath("transfer", "channel-0"))
	require.Equal("nextSequenceSend/ports/transfer/channels/channel-0", NextSequenceSendPath("transfer", "channel-0"))
	require.Equal("nextSequenceRecv/ports/transfer/channels/channel-0", NextSequenceRecvPath("transfer", "channel-0"))
	require.Equal("nextSequenceAck/ports/transfer/channels/channel-0", NextSequenceAckPath("transfer", "channel-0"))
	require.Equal("commitments/ports/transfer/channels/channel-0/sequences/1", PacketCommitmentPath("transfer", "channel-0", 1))
	require.Equal("acks/ports/transfer/channels/channel-0/sequences/1", PacketAcknowledgementPath("transfer", "channel-0", 1))
	require.Equal("receipts/ports/transfer/channels/channel-0/sequences/1", PacketReceiptPath("transfer", "channel-0", 1))
	require.True(strings.HasPrefix(PacketCommitmentPath("p1", "channel-0", 9), PacketCommitmentPrefixPath("p1", "channel-0")))

	require.NoError(PathValidator("ports/transfer"))
	require.Error(PathValidator("ports//transfer"))
}
