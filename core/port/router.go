package port

import (
	"fmt"
	"sort"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// The router is a map from port identifier to the module bound to it.
type Router struct {
	routes map[string]Module
	sealed bool
}

func NewRouter() *Router {
	return &Router{
		routes: make(map[string]Module),
	}
}

// Seal prevents the Router from any subsequent route handlers to be registered.
// Seal will panic if called more than once.
func (rtr *Router) Seal() {
	if rtr.sealed {
		panic("router already sealed")
	}
	rtr.sealed = true
}

// Sealed returns a boolean signifying if the Router is sealed or not.
func (rtr Router) Sealed() bool {
	return rtr.sealed
}

// AddRoute binds portID to module. It will panic if the router is sealed,
// the port identifier is invalid or the port is already bound.
func (rtr *Router) AddRoute(portID string, module Module) *Router {
	if rtr.sealed {
		panic(fmt.Sprintf("router sealed; cannot register %s route callbacks", portID))
	}
	if err := host.PortIdentifierValidator(portID); err != nil {
		panic(err)
	}
	if rtr.HasRoute(portID) {
		panic(fmt.Sprintf("route %s has already been registered", portID))
	}

	rtr.routes[portID] = module
	return rtr
}

// HasRoute returns true if the Router has a module registered for portID.
func (rtr *Router) HasRoute(portID string) bool {
	_, ok := rtr.routes[portID]
	return ok
}

// GetRoute returns the module bound to portID.
func (rtr *Router) GetRoute(portID string) (Module, bool) {
	if !rtr.HasRoute(portID) {
		return nil, false
	}
	return rtr.routes[portID], true
}

// Route returns the module bound to portID or ErrPortNotFound.
func (rtr *Router) Route(portID string) (Module, error) {
	module, ok := rtr.GetRoute(portID)
	if !ok {
		return nil, sdkerrors.Wrapf(ErrPortNotFound, "no module bound to port %s", portID)
	}
	return module, nil
}

// Ports returns the bound port identifiers in sorted order.
func (rtr *Router) Ports() []string {
	ports := make([]string, 0, len(rtr.routes))
	for portID := range rtr.routes {
		ports = append(ports, portID)
	}
	sort.Strings(ports)
	return ports
}
