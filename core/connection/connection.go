package connection

import (
	"fmt"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// State of a connection end. The numeric values are part of the committed encoding.
type State int32

const (
	UNINITIALIZED State = 0
	INIT          State = 1
	TRYOPEN       State = 2
	OPEN          State = 3
)

var stateNames = map[State]string{
	UNINITIALIZED: "STATE_UNINITIALIZED_UNSPECIFIED",
	INIT:          "STATE_INIT",
	TRYOPEN:       "STATE_TRYOPEN",
	OPEN:          "STATE_OPEN",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int32(s))
}

// Counterparty identifies the other end of a connection.
type Counterparty struct {
	ClientID     string
	ConnectionID string
	Prefix       commitment.Prefix
}

func NewCounterparty(clientID, connectionID string, prefix commitment.Prefix) Counterparty {
	return Counterparty{ClientID: clientID, ConnectionID: connectionID, Prefix: prefix}
}

// ValidateBasic allows an empty connection id, which is unknown until ConnOpenTry.
func (c Counterparty) ValidateBasic() error {
	if c.ConnectionID != "" {
		if err := host.ConnectionIdentifierValidator(c.ConnectionID); err != nil {
			return sdkerrors.Wrap(err, "invalid counterparty connection ID")
		}
	}
	if err := host.ClientIdentifierValidator(c.ClientID); err != nil {
		return sdkerrors.Wrap(err, "invalid counterparty client ID")
	}
	if c.Prefix.Empty() {
		return sdkerrors.Wrap(ErrInvalidCounterparty, "counterparty prefix cannot be empty")
	}
	return nil
}

// Marshal encodes the counterparty as ibc.core.connection.v1.Counterparty.
func (c Counterparty) Marshal() []byte {
	return codec.NewEncoder().
		String(1, c.ClientID).
		String(2, c.ConnectionID).
		Message(3, c.Prefix.Marshal()).
		Encode()
}

func unmarshalCounterparty(bz []byte) (Counterparty, error) {
	var c Counterparty
	err := codec.DecodeFields(bz, func(f codec.Field) (err error) {
		switch f.Num {
		case 1:
			c.ClientID = f.String()
		case 2:
			c.ConnectionID = f.String()
		case 3:
			c.Prefix, err = commitment.UnmarshalPrefix(f.Bytes)
		}
		return err
	})
	return c, err
}

// ConnectionEnd is one side of a connection between two chains.
type ConnectionEnd struct {
	ClientID     string
	Versions     []Version
	State        State
	Counterparty Counterparty
	// DelayPeriod is the time in nanoseconds a consensus state must have been
	// stored before packet proofs against it are accepted.
	DelayPeriod uint64
}

func NewConnectionEnd(state State, clientID string, counterparty Counterparty, versions []Version, delayPeriod uint64) ConnectionEnd {
	return ConnectionEnd{
		ClientID:     clientID,
		Versions:     versions,
		State:        state,
		Counterparty: counterparty,
		DelayPeriod:  delayPeriod,
	}
}

func (c ConnectionEnd) ValidateBasic() error {
	if err := host.ClientIdentifierValidator(c.ClientID); err != nil {
		return sdkerrors.Wrap(err, "invalid client ID")
	}
	if len(c.Versions) == 0 {
		return sdkerrors.Wrap(ErrInvalidVersion, "empty connection versions")
	}
	for _, version := range c.Versions {
		if err := ValidateVersion(version); err != nil {
			return err
		}
	}
	return c.Counterparty.ValidateBasic()
}

// Marshal encodes the connection as ibc.core.connection.v1.ConnectionEnd.
// These bytes are committed under the connection path and proven to the
// counterparty during the handshake.
func (c ConnectionEnd) Marshal() []byte {
	enc := codec.NewEncoder().String(1, c.ClientID)
	for _, v := range c.Versions {
		enc.Message(2, v.Marshal())
	}
	return enc.
		Enum(3, int32(c.State)).
		Message(4, c.Counterparty.Marshal()).
		Uint64(5, c.DelayPeriod).
		Encode()
}

func UnmarshalConnectionEnd(bz []byte) (ConnectionEnd, error) {
	var c ConnectionEnd
	err := codec.DecodeFields(bz, func(f codec.Field) (err error) {
		switch f.Num {
		case 1:
			c.ClientID = f.String()
		case 2:
			var v Version
			if v, err = unmarshalVersion(f.Bytes); err == nil {
				c.Versions = append(c.Versions, v)
			}
		case 3:
			c.State = State(f.Varint)
		case 4:
			c.Counterparty, err = unmarshalCounterparty(f.Bytes)
		case 5:
			c.DelayPeriod = f.Varint
		}
		return err
	})
	if err != nil {
		return ConnectionEnd{}, sdkerrors.Wrap(ErrInvalidConnection, err.Error())
	}
	return c, nil
}
