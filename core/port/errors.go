package port

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// SubModuleName defines the IBC port name
const SubModuleName = "port"

// IBC port sentinel errors
var (
	ErrPortNotFound = sdkerrors.Register(SubModuleName, 2, "port not found")
)
