package connection

import (
	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// ValidationContext is the read capability the connection subsystem needs from the host.
type ValidationContext interface {
	client.ValidationContext

	// ConnectionEnd returns ErrConnectionNotFound when the connection does not exist.
	ConnectionEnd(connectionID string) (ConnectionEnd, error)
	ConnectionCounter() (uint64, error)
	// CommitmentPrefix is the prefix the host commits IBC state under.
	CommitmentPrefix() commitment.Prefix
	// HostConsensusState returns the consensus state of the host at height,
	// as a counterparty client of the host would store it.
	HostConsensusState(height client.Height) (client.ConsensusState, error)
	// ValidateSelfClient checks that clientState is a valid client of the host chain.
	ValidateSelfClient(clientState client.ClientState) error
}

// ExecutionContext is the write capability the connection subsystem needs from the host.
type ExecutionContext interface {
	ValidationContext
	client.ExecutionContext

	SetConnection(connectionID string, connection ConnectionEnd) error
	// AddConnectionToClient records connectionID under the connection paths of clientID.
	AddConnectionToClient(clientID, connectionID string) error
	IncreaseConnectionCounter() error
}
