package keeper

import (
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	abci "github.com/tendermint/tendermint/abci/types"
)

// EventHandler handles the events of a committed datagram. store is the
// host's non-provable index store.
type EventHandler interface {
	Handle(store storetypes.KVStore, events []abci.Event) (continue_ bool, err error)
}

// DefaultMultiEventHandler returns a handler that indexes sent packets and
// written acknowledgements.
func DefaultMultiEventHandler() MultiEventHandler {
	return NewMultiEventHandler(
		EventHandlerFunc(HandlePacketEvent),
		EventHandlerFunc(HandlePacketAcknowledgementEvent),
	)
}

// EventHandlerFunc is a function type which handles application events
type EventHandlerFunc func(store storetypes.KVStore, events []abci.Event) (continue_ bool, err error)

// Handle implements EventHandler.Handle
func (f EventHandlerFunc) Handle(store storetypes.KVStore, events []abci.Event) (continue_ bool, err error) {
	return f(store, events)
}

// MultiEventHandler runs its handlers in order until one of them stops the chain.
type MultiEventHandler struct {
	hs []EventHandler
}

func NewMultiEventHandler(handlers ...EventHandler) MultiEventHandler {
	return MultiEventHandler{hs: handlers}
}

// Handle handles the events by every handler until one returns false or an error.
func (mh MultiEventHandler) Handle(store storetypes.KVStore, events []abci.Event) error {
	for _, h := range mh.hs {
		continue_, err := h.Handle(store, events)
		if err != nil {
			return err
		}
		if !continue_ {
			return nil
		}
	}
	return nil
}
