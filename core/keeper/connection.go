package keeper

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

func (c *Context) ConnectionEnd(connectionID string) (connection.ConnectionEnd, error) {
	bz := c.store.Get(host.ConnectionKey(connectionID))
	if len(bz) == 0 {
		return connection.ConnectionEnd{}, sdkerrors.Wrapf(connection.ErrConnectionNotFound, "connection %s", connectionID)
	}
	return connection.UnmarshalConnectionEnd(bz)
}

func (c *Context) SetConnection(connectionID string, conn connection.ConnectionEnd) error {
	c.store.Set(host.ConnectionKey(connectionID), conn.Marshal())
	return nil
}

// ClientConnections returns the connections built on clientID, in creation order.
func (c *Context) ClientConnections(clientID string) ([]string, error) {
	bz := c.store.Get(host.ClientConnectionsKey(clientID))
	if len(bz) == 0 {
		return nil, sdkerrors.Wrapf(connection.ErrClientConnectionPathsNotFound, "client %s", clientID)
	}
	var connections []string
	err := codec.DecodeFields(bz, func(f codec.Field) error {
		if f.Num == 1 {
			connections = append(connections, f.String())
		}
		return nil
	})
	return connections, err
}

func (c *Context) AddConnectionToClient(clientID, connectionID string) error {
	connections, err := c.ClientConnections(clientID)
	if err != nil && !sdkerrors.IsOf(err, connection.ErrClientConnectionPathsNotFound) {
		return err
	}
	connections = append(connections, connectionID)
	c.store.Set(host.ClientConnectionsKey(clientID), codec.NewEncoder().Strings(1, connections).Encode())
	return nil
}

func (c *Context) ConnectionCounter() (uint64, error) {
	return c.getUint64([]byte(host.KeyNextConnectionSequence)), nil
}

func (c *Context) IncreaseConnectionCounter() error {
	c.setUint64([]byte(host.KeyNextConnectionSequence), c.getUint64([]byte(host.KeyNextConnectionSequence))+1)
	return nil
}

func (c *Context) HostConsensusState(height client.Height) (client.ConsensusState, error) {
	if c.selfClient == nil {
		return nil, sdkerrors.Wrap(client.ErrSelfConsensusStateNotFound, "host has no self client")
	}
	return c.selfClient.ConsensusState(height)
}

func (c *Context) ValidateSelfClient(clientState client.ClientState) error {
	if c.selfClient == nil {
		return sdkerrors.Wrap(client.ErrInvalidSelfClient, "host has no self client")
	}
	return c.selfClient.ValidateClient(clientState, c.HostHeight())
}
