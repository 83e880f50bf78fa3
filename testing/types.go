package testing

import (
	"fmt"

	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
)

// TestConnection is a testing helper struct to keep track of the connectionID, source clientID,
// counterparty clientID, and the next channel version used in creating and interacting with a
// connection.
type TestConnection struct {
	ID                   string
	ClientID             string
	CounterpartyClientID string
	Channels             []TestChannel
}

// AddTestChannel appends a new TestChannel which contains references to the port and channel ID
// used for channel creation and interaction.
func (conn *TestConnection) AddTestChannel(ch TestChannel) {
	conn.Channels = append(conn.Channels, ch)
}

// FirstOrNextTestChannel returns the first test channel if it exists, otherwise it
// returns the next test channel to be created. This function is expected to be used
// when the caller does not know if the channel has or has not been created.
func (conn *TestConnection) FirstOrNextTestChannel(portID string) TestChannel {
	if len(conn.Channels) > 0 {
		return conn.Channels[0]
	}
	return TestChannel{PortID: portID, ClientID: conn.ClientID, CounterpartyClientID: conn.CounterpartyClientID}
}

// TestChannel is a testing helper struct to keep track of the portID and channelID
// used in creating and interacting with a channel. The clientID and counterparty
// client ID are also tracked to cut down on querying and argument passing.
type TestChannel struct {
	PortID               string
	ID                   string
	ClientID             string
	CounterpartyClientID string
	Version              string
}

// attribute returns the value of key in the first event of eventType.
func attribute(events []abci.Event, eventType, key string) (string, error) {
	for _, ev := range events {
		if ev.Type != eventType {
			continue
		}
		for _, attr := range ev.Attributes {
			if string(attr.Key) == key {
				return string(attr.Value), nil
			}
		}
	}
	return "", fmt.Errorf("attribute %s of event %s not found", key, eventType)
}

// ParseAckFromEvents returns the acknowledgement of the first
// write_acknowledgement event.
func ParseAckFromEvents(events []abci.Event) ([]byte, error) {
	acks, err := channel.AcknowledgementsFromEvents(events)
	if err != nil {
		return nil, err
	}
	if len(acks) == 0 {
		return nil, fmt.Errorf("acknowledgement event attribute not found")
	}
	return acks[0].Acknowledgement, nil
}
