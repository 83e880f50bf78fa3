package core

import (
	"errors"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
	"github.com/hyperledger-labs/yui-ibc-core/core/port"
)

// Kind tells a relayer how a rejected datagram may be handled.
type Kind int

const (
	// ProtocolViolation is a malformed or policy-violating datagram. It is never retried.
	ProtocolViolation Kind = iota
	// ProofVerificationFailure may be resubmitted with a fresher proof.
	ProofVerificationFailure
	// StateMismatch is a datagram built against a pre-state that no longer
	// holds. It is safe to retry once after re-querying state.
	StateMismatch
	// ClientFault is a frozen or expired client. It requires client recovery.
	ClientFault
	// ModuleCallbackFailure is a rejection by the application module.
	ModuleCallbackFailure
)

func (k Kind) String() string {
	switch k {
	case ProtocolViolation:
		return "ProtocolViolation"
	case ProofVerificationFailure:
		return "ProofVerificationFailure"
	case StateMismatch:
		return "StateMismatch"
	case ClientFault:
		return "ClientFault"
	case ModuleCallbackFailure:
		return "ModuleCallbackFailure"
	default:
		return "Unknown"
	}
}

var (
	proofErrors = []error{
		connection.ErrConnectionProofVerificationFailed,
		channel.ErrChannelProofVerificationFailed,
		commitment.ErrVerificationFailure,
	}
	clientFaults = []error{
		client.ErrClientFrozen,
		client.ErrClientExpired,
		client.ErrClientNotActive,
	}
	stateMismatches = []error{
		client.ErrClientExists,
		client.ErrClientNotFound,
		client.ErrConsensusStateNotFound,
		client.ErrDelayPeriodNotPassed,
		client.ErrInvalidHeight,
		connection.ErrConnectionExists,
		connection.ErrConnectionNotFound,
		connection.ErrConnectionStateMismatch,
		channel.ErrChannelExists,
		channel.ErrChannelNotFound,
		channel.ErrInvalidChannelState,
		channel.ErrSequenceSendNotFound,
		channel.ErrSequenceReceiveNotFound,
		channel.ErrSequenceAckNotFound,
		channel.ErrPacketTimedOut,
		channel.ErrAcknowledgementExists,
		channel.ErrPacketCommitmentNotFound,
		channel.ErrPacketAlreadyReceived,
		channel.ErrOutOfOrderPacket,
		channel.ErrTimeoutNotReached,
		port.ErrPortNotFound,
	}
)

// Classify maps err to the kind of rejection it represents. Module callback
// failures take precedence over the error the module returned.
func Classify(err error) Kind {
	var cbErr *CallbackError
	if errors.As(err, &cbErr) {
		return ModuleCallbackFailure
	}
	switch {
	case isAny(err, proofErrors):
		return ProofVerificationFailure
	case isAny(err, clientFaults):
		return ClientFault
	case isAny(err, stateMismatches):
		return StateMismatch
	default:
		return ProtocolViolation
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
