package client

import (
	"fmt"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
)

const typeURLPrefix = "/ibc.lightclients."

func ClientStateTypeURL(clientType string) string {
	return fmt.Sprintf("%s%s.ClientState", typeURLPrefix, clientType)
}

func ConsensusStateTypeURL(clientType string) string {
	return fmt.Sprintf("%s%s.ConsensusState", typeURLPrefix, clientType)
}

// MarshalClientState encodes a client state in an Any envelope. These bytes
// are what the counterparty proves in the connection handshake.
func MarshalClientState(cs ClientState) []byte {
	return codec.EncodeAny(ClientStateTypeURL(cs.ClientType()), cs.Marshal())
}

// MarshalConsensusState encodes a consensus state in an Any envelope.
func MarshalConsensusState(cs ConsensusState) []byte {
	return codec.EncodeAny(ConsensusStateTypeURL(cs.ClientType()), cs.Marshal())
}

// Registry resolves the Codec of every known client type.
type Registry struct {
	codecs map[string]Codec
}

func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register panics when the client type is registered twice.
func (r *Registry) Register(c Codec) {
	if _, ok := r.codecs[c.ClientType()]; ok {
		panic(fmt.Sprintf("client type %s already registered", c.ClientType()))
	}
	r.codecs[c.ClientType()] = c
}

func (r *Registry) ClientTypes() []string {
	types := make([]string, 0, len(r.codecs))
	for t := range r.codecs {
		types = append(types, t)
	}
	return types
}

func (r *Registry) UnmarshalClientState(bz []byte) (ClientState, error) {
	url, value, err := codec.DecodeAny(bz)
	if err != nil {
		return nil, sdkerrors.Wrap(ErrInvalidClientState, err.Error())
	}
	c, err := r.lookup(url, ".ClientState")
	if err != nil {
		return nil, err
	}
	return c.UnmarshalClientState(value)
}

func (r *Registry) UnmarshalConsensusState(bz []byte) (ConsensusState, error) {
	url, value, err := codec.DecodeAny(bz)
	if err != nil {
		return nil, sdkerrors.Wrap(ErrInvalidConsensus, err.Error())
	}
	c, err := r.lookup(url, ".ConsensusState")
	if err != nil {
		return nil, err
	}
	return c.UnmarshalConsensusState(value)
}

func (r *Registry) lookup(url, suffix string) (Codec, error) {
	if !strings.HasPrefix(url, typeURLPrefix) || !strings.HasSuffix(url, suffix) {
		return nil, sdkerrors.Wrapf(ErrClientTypeNotFound, "unexpected type url %s", url)
	}
	clientType := strings.TrimSuffix(strings.TrimPrefix(url, typeURLPrefix), suffix)
	c, ok := r.codecs[clientType]
	if !ok {
		return nil, sdkerrors.Wrapf(ErrClientTypeNotFound, "client type %s", clientType)
	}
	return c, nil
}
