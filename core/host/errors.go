package host

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const SubModuleName = "host"

var (
	ErrInvalidID     = sdkerrors.Register(SubModuleName, 2, "invalid identifier")
	ErrInvalidPath   = sdkerrors.Register(SubModuleName, 3, "invalid path")
	ErrInvalidPacket = sdkerrors.Register(SubModuleName, 4, "invalid packet")
)
