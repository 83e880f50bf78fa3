package core

import (
	"fmt"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// ModuleName is the codespace of the errors raised by the dispatcher.
const ModuleName = "ibc"

var (
	ErrUnknownDatagram = sdkerrors.Register(ModuleName, 2, "unknown datagram")
	ErrInvalidDatagram = sdkerrors.Register(ModuleName, 3, "invalid datagram")
)

// CallbackError is returned when a module callback rejects a datagram.
type CallbackError struct {
	PortID   string
	Callback string
	Err      error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s callback of port %s failed: %v", e.Callback, e.PortID, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

func callbackError(portID, callback string, err error) error {
	return &CallbackError{PortID: portID, Callback: callback, Err: err}
}
