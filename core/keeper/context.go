package keeper

import (
	"time"

	"github.com/cosmos/cosmos-sdk/store/cachekv"
	"github.com/cosmos/cosmos-sdk/store/prefix"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

var _ core.ExecutionContext = (*Context)(nil)

// Header describes the block the host is executing.
type Header struct {
	ChainID string
	Height  client.Height
	Time    time.Time
}

// SelfClient describes the host chain to the connection handshake. The
// counterparty's client of this chain is checked with it.
type SelfClient interface {
	// ConsensusState returns the consensus state of the host at height as a
	// client of the host stores it.
	ConsensusState(height client.Height) (client.ConsensusState, error)
	// ValidateClient checks a client state of the host chain held by a
	// counterparty, given the current host height.
	ValidateClient(clientState client.ClientState, hostHeight client.Height) error
}

// Context implements the host side of the IBC core over a provable KVStore
// that holds every ICS-24 path and a private store for the application
// modules. Writes of a cache context reach the parent only on commit.
type Context struct {
	store        storetypes.KVStore
	moduleStore  storetypes.KVStore
	header       Header
	registry     *client.Registry
	selfClient   SelfClient
	prefix       commitment.Prefix
	eventManager *sdk.EventManager
}

// NewContext returns a context executing header. ibcStore is the store that
// is committed under the host.StoreKey prefix.
func NewContext(
	ibcStore, moduleStore storetypes.KVStore,
	header Header,
	registry *client.Registry,
	selfClient SelfClient,
) *Context {
	return &Context{
		store:        ibcStore,
		moduleStore:  moduleStore,
		header:       header,
		registry:     registry,
		selfClient:   selfClient,
		prefix:       commitment.NewPrefix([]byte(host.StoreKey)),
		eventManager: sdk.NewEventManager(),
	}
}

// WithCommitmentPrefix sets the prefix the IBC store is committed under when
// the host mounts it under a name other than host.StoreKey.
func (c *Context) WithCommitmentPrefix(prefix commitment.Prefix) *Context {
	c.prefix = prefix
	return c
}

func (c *Context) Header() Header {
	return c.header
}

func (c *Context) HostHeight() client.Height {
	return c.header.Height
}

func (c *Context) HostTimestamp() uint64 {
	return uint64(c.header.Time.UnixNano())
}

func (c *Context) CommitmentPrefix() commitment.Prefix {
	return c.prefix
}

func (c *Context) EmitEvent(event sdk.Event) {
	c.eventManager.EmitEvent(event)
}

func (c *Context) Events() sdk.Events {
	return c.eventManager.Events()
}

// ModuleStore returns the store of the module bound to portID. Modules never
// see each other's keys.
func (c *Context) ModuleStore(portID string) storetypes.KVStore {
	return prefix.NewStore(c.moduleStore, []byte(portID+"/"))
}

// CacheContext branches both stores and the event manager.
func (c *Context) CacheContext() (core.ExecutionContext, func()) {
	store := cachekv.NewStore(c.store)
	moduleStore := cachekv.NewStore(c.moduleStore)
	cached := *c
	cached.store = store
	cached.moduleStore = moduleStore
	cached.eventManager = sdk.NewEventManager()
	return &cached, func() {
		store.Write()
		moduleStore.Write()
		c.eventManager.EmitEvents(cached.eventManager.Events())
	}
}

func (c *Context) getUint64(key []byte) uint64 {
	bz := c.store.Get(key)
	if len(bz) == 0 {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

func (c *Context) setUint64(key []byte, v uint64) {
	c.store.Set(key, sdk.Uint64ToBigEndian(v))
}
