package client

import (
	"github.com/hyperledger-labs/yui-ibc-core/commitment"
)

// Status of a client.
type Status string

const (
	// Active: the client can be updated and used for proof verification.
	Active Status = "Active"
	// Frozen: misbehaviour was submitted, the client can no longer be used.
	Frozen Status = "Frozen"
	// Expired: the latest consensus state is older than the trusting period.
	Expired Status = "Expired"
	// Unknown: the client state or its latest consensus state is missing.
	Unknown Status = "Unknown"
	// Unauthorized: the client type is not in the allowed client list.
	Unauthorized Status = "Unauthorized"
)

func (s Status) String() string {
	return string(s)
}

// ClientState is the light client capability set of one client type. The
// client subsystem only ever talks to clients through this interface.
// Implementations are values; state changes are returned, never applied in place.
type ClientState interface {
	ClientType() string
	GetLatestHeight() Height
	// Validate performs stateless checks of the client parameters.
	Validate() error
	Status(reader ClientReader) Status
	// Marshal returns the deterministic encoding committed to state.
	Marshal() []byte

	// VerifyClientMessage runs the validity predicate of the client type on a
	// header or a misbehaviour. It must be called before the other client
	// message methods.
	VerifyClientMessage(reader ClientReader, msg ClientMessage) error
	// CheckForMisbehaviour reports whether a verified message proves misbehaviour.
	CheckForMisbehaviour(reader ClientReader, msg ClientMessage) bool
	// UpdateState returns the client and consensus state after applying a
	// verified header, and the height the consensus state is stored at.
	UpdateState(msg ClientMessage) (ClientState, ConsensusState, Height, error)
	// UpdateStateOnMisbehaviour returns the frozen client state.
	UpdateStateOnMisbehaviour(msg ClientMessage) ClientState
	// CheckSubstituteAndUpdateState returns the recovered client state when
	// substitute may replace the receiver.
	CheckSubstituteAndUpdateState(substitute ClientState) (ClientState, error)

	VerifyMembership(consensusState ConsensusState, proof []byte, path commitment.Path, value []byte) error
	VerifyNonMembership(consensusState ConsensusState, proof []byte, path commitment.Path) error
}

// ConsensusState is the state of the counterparty chain at one height.
type ConsensusState interface {
	ClientType() string
	GetRoot() commitment.Root
	// GetTimestamp returns the block time in nanoseconds.
	GetTimestamp() uint64
	ValidateBasic() error
	Marshal() []byte
}

// ClientMessage is a header or a misbehaviour of some client type.
type ClientMessage interface {
	ClientType() string
	ValidateBasic() error
}

// ClientReader is the read-only view of one client's consensus history given to
// light client implementations.
type ClientReader interface {
	ConsensusState(height Height) (ConsensusState, bool)
	// PrevConsensusState returns the consensus state with the greatest height
	// strictly lower than height.
	PrevConsensusState(height Height) (ConsensusState, Height, bool)
	// NextConsensusState returns the consensus state with the lowest height
	// strictly greater than height.
	NextConsensusState(height Height) (ConsensusState, Height, bool)
	// HostTimestamp returns the current time of the host chain in nanoseconds.
	HostTimestamp() uint64
}

// Codec decodes the states of one client type.
type Codec interface {
	ClientType() string
	UnmarshalClientState(bz []byte) (ClientState, error)
	UnmarshalConsensusState(bz []byte) (ConsensusState, error)
}
