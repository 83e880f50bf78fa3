package types

import (
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// Codec registers the attested client with a client.Registry.
type Codec struct{}

var _ client.Codec = Codec{}

func (Codec) ClientType() string {
	return ClientType
}

func (Codec) UnmarshalClientState(bz []byte) (client.ClientState, error) {
	return UnmarshalClientState(bz)
}

func (Codec) UnmarshalConsensusState(bz []byte) (client.ConsensusState, error) {
	return UnmarshalConsensusState(bz)
}
