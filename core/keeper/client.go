package keeper

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/store/prefix"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// KeyIterateConsensusStatePrefix orders the consensus states of a client by
// height, so that the neighbours of a height can be found by iteration.
const KeyIterateConsensusStatePrefix = "iterateConsensusStates"

var (
	keyProcessedTime   = []byte("processedTime")
	keyProcessedHeight = []byte("processedHeight")
)

// iterationKey is the big-endian encoding of height under the iteration prefix.
func iterationKey(height client.Height) []byte {
	key := append([]byte(KeyIterateConsensusStatePrefix), sdk.Uint64ToBigEndian(height.RevisionNumber)...)
	return append(key, sdk.Uint64ToBigEndian(height.RevisionHeight)...)
}

func processedKey(height client.Height, suffix []byte) []byte {
	return []byte(fmt.Sprintf("%s/%s", host.ConsensusStatePath(height.RevisionNumber, height.RevisionHeight), suffix))
}

// clientStore returns the store scoped to "clients/{clientID}/".
func (c *Context) clientStore(clientID string) storetypes.KVStore {
	return prefix.NewStore(c.store, []byte(host.FullClientPath(clientID, "")))
}

func (c *Context) ClientState(clientID string) (client.ClientState, error) {
	bz := c.clientStore(clientID).Get(host.ClientStateKey())
	if len(bz) == 0 {
		return nil, sdkerrors.Wrapf(client.ErrClientNotFound, "client %s", clientID)
	}
	return c.registry.UnmarshalClientState(bz)
}

func (c *Context) SetClientState(clientID string, clientState client.ClientState) error {
	c.clientStore(clientID).Set(host.ClientStateKey(), client.MarshalClientState(clientState))
	return nil
}

func (c *Context) ConsensusState(clientID string, height client.Height) (client.ConsensusState, error) {
	bz := c.clientStore(clientID).Get(host.ConsensusStateKey(height.RevisionNumber, height.RevisionHeight))
	if len(bz) == 0 {
		return nil, sdkerrors.Wrapf(client.ErrConsensusStateNotFound, "client %s height %s", clientID, height)
	}
	return c.registry.UnmarshalConsensusState(bz)
}

func (c *Context) SetConsensusState(clientID string, height client.Height, consensusState client.ConsensusState) error {
	store := c.clientStore(clientID)
	store.Set(host.ConsensusStateKey(height.RevisionNumber, height.RevisionHeight), client.MarshalConsensusState(consensusState))
	store.Set(iterationKey(height), height.Marshal())
	return nil
}

func (c *Context) PrevConsensusState(clientID string, height client.Height) (client.ConsensusState, client.Height, error) {
	store := c.clientStore(clientID)
	iterator := store.ReverseIterator([]byte(KeyIterateConsensusStatePrefix), iterationKey(height))
	defer iterator.Close()
	return c.firstConsensusState(clientID, iterator, height)
}

func (c *Context) NextConsensusState(clientID string, height client.Height) (client.ConsensusState, client.Height, error) {
	store := c.clientStore(clientID)
	start := iterationKey(client.NewHeight(height.RevisionNumber, height.RevisionHeight+1))
	iterator := store.Iterator(start, storetypes.PrefixEndBytes([]byte(KeyIterateConsensusStatePrefix)))
	defer iterator.Close()
	return c.firstConsensusState(clientID, iterator, height)
}

func (c *Context) firstConsensusState(clientID string, iterator storetypes.Iterator, height client.Height) (client.ConsensusState, client.Height, error) {
	if !iterator.Valid() {
		return nil, client.Height{}, sdkerrors.Wrapf(client.ErrConsensusStateNotFound, "client %s has no consensus state next to %s", clientID, height)
	}
	found, err := client.UnmarshalHeight(iterator.Value())
	if err != nil {
		return nil, client.Height{}, err
	}
	consensusState, err := c.ConsensusState(clientID, found)
	if err != nil {
		return nil, client.Height{}, err
	}
	return consensusState, found, nil
}

func (c *Context) ClientProcessedTime(clientID string, height client.Height) (uint64, bool) {
	bz := c.clientStore(clientID).Get(processedKey(height, keyProcessedTime))
	if len(bz) == 0 {
		return 0, false
	}
	return sdk.BigEndianToUint64(bz), true
}

func (c *Context) ClientProcessedHeight(clientID string, height client.Height) (client.Height, bool) {
	bz := c.clientStore(clientID).Get(processedKey(height, keyProcessedHeight))
	if len(bz) == 0 {
		return client.Height{}, false
	}
	if len(bz) != 16 {
		return client.Height{}, false
	}
	return client.NewHeight(sdk.BigEndianToUint64(bz[:8]), sdk.BigEndianToUint64(bz[8:])), true
}

func (c *Context) SetClientProcessed(clientID string, height client.Height, processedTime uint64, processedHeight client.Height) error {
	store := c.clientStore(clientID)
	store.Set(processedKey(height, keyProcessedTime), sdk.Uint64ToBigEndian(processedTime))
	store.Set(processedKey(height, keyProcessedHeight), append(sdk.Uint64ToBigEndian(processedHeight.RevisionNumber), sdk.Uint64ToBigEndian(processedHeight.RevisionHeight)...))
	return nil
}

func (c *Context) ClientCounter() (uint64, error) {
	return c.getUint64([]byte(host.KeyNextClientSequence)), nil
}

func (c *Context) IncreaseClientCounter() error {
	c.setUint64([]byte(host.KeyNextClientSequence), c.getUint64([]byte(host.KeyNextClientSequence))+1)
	return nil
}
