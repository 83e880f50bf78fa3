package channel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	portID             = "mock"
	channelID          = "channel-0"
	connectionID       = "connection-0"
	counterpartyPortID = "mockcp"
)

func TestChannelEncoding(t *testing.T) {
	require := require.New(t)

	ch := NewChannel(TRYOPEN, ORDERED, NewCounterparty(counterpartyPortID, "channel-7"), []string{connectionID}, "mock-version")
	decoded, err := UnmarshalChannel(ch.Marshal())
	require.NoError(err)
	require.Equal(ch, decoded)

	// an unknown counterparty channel is omitted from the encoding
	init := NewChannel(INIT, UNORDERED, NewCounterparty(counterpartyPortID, ""), []string{connectionID}, "")
	decoded, err = UnmarshalChannel(init.Marshal())
	require.NoError(err)
	require.Equal(init, decoded)

	_, err = UnmarshalChannel([]byte{0x0a, 0x05})
	require.ErrorIs(err, ErrInvalidChannel)
}

func TestChannelValidateBasic(t *testing.T) {
	counterparty := NewCounterparty(counterpartyPortID, "channel-7")

	testCases := []struct {
		name    string
		channel ChannelEnd
		expErr  error
	}{
		{"valid channel", NewChannel(OPEN, ORDERED, counterparty, []string{connectionID}, "v1"), nil},
		{"uninitialized state", NewChannel(UNINITIALIZED, ORDERED, counterparty, []string{connectionID}, "v1"), ErrInvalidChannelState},
		{"no ordering", NewChannel(OPEN, NONE, counterparty, []string{connectionID}, "v1"), ErrInvalidChannelOrdering},
		{"no connection hops", NewChannel(OPEN, ORDERED, counterparty, nil, "v1"), ErrTooManyConnectionHops},
		{"two connection hops", NewChannel(OPEN, ORDERED, counterparty, []string{connectionID, "connection-1"}, "v1"), ErrTooManyConnectionHops},
		{"invalid connection hop", NewChannel(OPEN, ORDERED, counterparty, []string{"(conn)"}, "v1"), nil},
		{"invalid counterparty port", NewChannel(OPEN, ORDERED, NewCounterparty("(port)", "channel-7"), []string{connectionID}, "v1"), nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.channel.ValidateBasic()
			switch {
			case tc.name == "valid channel":
				require.NoError(t, err)
			case tc.expErr != nil:
				require.ErrorIs(t, err, tc.expErr)
			default:
				require.Error(t, err)
			}
		})
	}
}

func TestParseOrder(t *testing.T) {
	require := require.New(t)

	order, err := ParseOrder("ordered")
	require.NoError(err)
	require.Equal(ORDERED, order)

	order, err = ParseOrder(UNORDERED.String())
	require.NoError(err)
	require.Equal(UNORDERED, order)

	_, err = ParseOrder("dag")
	require.ErrorIs(err, ErrInvalidChannelOrdering)
}
