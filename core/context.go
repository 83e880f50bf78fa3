package core

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/port"
)

// ValidationContext is the read capability the host supplies to the IBC core.
type ValidationContext interface {
	channel.ValidationContext
}

// ExecutionContext is the write capability the host supplies to the IBC core.
type ExecutionContext interface {
	channel.ExecutionContext
	port.Context

	// CacheContext branches the context. Writes and events of the branch
	// reach the receiver only when commit is called.
	CacheContext() (cached ExecutionContext, commit func())
	// Events returns the events emitted to this context so far.
	Events() sdk.Events
}
