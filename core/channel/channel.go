package channel

import (
	"fmt"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// State of a channel end. The numeric values are part of the committed encoding.
type State int32

const (
	UNINITIALIZED State = 0
	INIT          State = 1
	TRYOPEN       State = 2
	OPEN          State = 3
	CLOSED        State = 4
)

var stateNames = map[State]string{
	UNINITIALIZED: "STATE_UNINITIALIZED_UNSPECIFIED",
	INIT:          "STATE_INIT",
	TRYOPEN:       "STATE_TRYOPEN",
	OPEN:          "STATE_OPEN",
	CLOSED:        "STATE_CLOSED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int32(s))
}

// Order of packet delivery on a channel.
type Order int32

const (
	NONE      Order = 0
	UNORDERED Order = 1
	ORDERED   Order = 2
)

var orderNames = map[Order]string{
	NONE:      "ORDER_NONE_UNSPECIFIED",
	UNORDERED: "ORDER_UNORDERED",
	ORDERED:   "ORDER_ORDERED",
}

// String returns the connection feature name of the ordering.
func (o Order) String() string {
	if name, ok := orderNames[o]; ok {
		return name
	}
	return fmt.Sprintf("ORDER_%d", int32(o))
}

// ParseOrder accepts the full feature name or the short forms "ordered" and "unordered".
func ParseOrder(s string) (Order, error) {
	switch strings.ToUpper(s) {
	case "ORDER_ORDERED", "ORDERED":
		return ORDERED, nil
	case "ORDER_UNORDERED", "UNORDERED":
		return UNORDERED, nil
	}
	return NONE, sdkerrors.Wrapf(ErrInvalidChannelOrdering, "unknown ordering %q", s)
}

// Counterparty identifies the other end of a channel.
type Counterparty struct {
	PortID    string
	ChannelID string
}

func NewCounterparty(portID, channelID string) Counterparty {
	return Counterparty{PortID: portID, ChannelID: channelID}
}

// ValidateBasic allows an empty channel id, which is unknown until ChanOpenTry.
func (c Counterparty) ValidateBasic() error {
	if err := host.PortIdentifierValidator(c.PortID); err != nil {
		return sdkerrors.Wrap(err, "invalid counterparty port ID")
	}
	if c.ChannelID != "" {
		if err := host.ChannelIdentifierValidator(c.ChannelID); err != nil {
			return sdkerrors.Wrap(err, "invalid counterparty channel ID")
		}
	}
	return nil
}

func (c Counterparty) Marshal() []byte {
	return codec.NewEncoder().String(1, c.PortID).String(2, c.ChannelID).Encode()
}

// ChannelEnd is one side of a channel between two ports.
type ChannelEnd struct {
	State          State
	Ordering       Order
	Counterparty   Counterparty
	ConnectionHops []string
	Version        string
}

func NewChannel(state State, ordering Order, counterparty Counterparty, hops []string, version string) ChannelEnd {
	return ChannelEnd{
		State:          state,
		Ordering:       ordering,
		Counterparty:   counterparty,
		ConnectionHops: hops,
		Version:        version,
	}
}

func (ch ChannelEnd) ValidateBasic() error {
	if ch.State == UNINITIALIZED {
		return sdkerrors.Wrap(ErrInvalidChannelState, "channel state cannot be uninitialized")
	}
	if ch.Ordering != ORDERED && ch.Ordering != UNORDERED {
		return sdkerrors.Wrap(ErrInvalidChannelOrdering, ch.Ordering.String())
	}
	if len(ch.ConnectionHops) != 1 {
		return sdkerrors.Wrapf(ErrTooManyConnectionHops, "current IBC version only supports one connection hop, got %d", len(ch.ConnectionHops))
	}
	if err := host.ConnectionIdentifierValidator(ch.ConnectionHops[0]); err != nil {
		return sdkerrors.Wrap(err, "invalid connection hop ID")
	}
	return ch.Counterparty.ValidateBasic()
}

// Marshal encodes the channel as ibc.core.channel.v1.Channel. These bytes
// are committed under the channel path and proven during the handshake.
func (ch ChannelEnd) Marshal() []byte {
	return codec.NewEncoder().
		Enum(1, int32(ch.State)).
		Enum(2, int32(ch.Ordering)).
		Message(3, ch.Counterparty.Marshal()).
		Strings(4, ch.ConnectionHops).
		String(5, ch.Version).
		Encode()
}

func UnmarshalChannel(bz []byte) (ChannelEnd, error) {
	var ch ChannelEnd
	err := codec.DecodeFields(bz, func(f codec.Field) error {
		switch f.Num {
		case 1:
			ch.State = State(f.Varint)
		case 2:
			ch.Ordering = Order(f.Varint)
		case 3:
			return codec.DecodeFields(f.Bytes, func(cf codec.Field) error {
				switch cf.Num {
				case 1:
					ch.Counterparty.PortID = cf.String()
				case 2:
					ch.Counterparty.ChannelID = cf.String()
				}
				return nil
			})
		case 4:
			ch.ConnectionHops = append(ch.ConnectionHops, f.String())
		case 5:
			ch.Version = f.String()
		}
		return nil
	})
	if err != nil {
		return ChannelEnd{}, sdkerrors.Wrap(ErrInvalidChannel, err.Error())
	}
	return ch, nil
}
