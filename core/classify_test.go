package core

import (
	"errors"
	"fmt"
	"testing"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"invalid datagram", sdkerrors.Wrap(ErrInvalidDatagram, "empty"), ProtocolViolation},
		{"unknown error", errors.New("boom"), ProtocolViolation},
		{"connection proof", sdkerrors.Wrap(connection.ErrConnectionProofVerificationFailed, "connection state"), ProofVerificationFailure},
		{"commitment proof", fmt.Errorf("verify: %w", commitment.ErrVerificationFailure), ProofVerificationFailure},
		{"frozen client", sdkerrors.Wrap(client.ErrClientFrozen, "xx-attested-0"), ClientFault},
		{"expired client", client.ErrClientExpired, ClientFault},
		{"duplicate packet", sdkerrors.Wrap(channel.ErrPacketAlreadyReceived, "sequence 1"), StateMismatch},
		{"timed out packet", channel.ErrPacketTimedOut, StateMismatch},
		{"stale channel state", channel.ErrInvalidChannelState, StateMismatch},
		{"callback", callbackError("mock", "OnRecvPacket", errors.New("rejected")), ModuleCallbackFailure},
		{"callback wrapping a state error", callbackError("mock", "OnTimeoutPacket", channel.ErrPacketTimedOut), ModuleCallbackFailure},
		{"wrapped callback", sdkerrors.Wrap(callbackError("mock", "OnChanOpenInit", errors.New("rejected")), "message index: 0"), ModuleCallbackFailure},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.kind, Classify(tc.err), tc.kind.String())
		})
	}
}

func TestCallbackError(t *testing.T) {
	require := require.New(t)
	inner := errors.New("rejected")
	err := callbackError("mock", "OnRecvPacket", inner)

	require.True(errors.Is(err, inner))
	require.Contains(err.Error(), "OnRecvPacket")
	require.Contains(err.Error(), "mock")
	require.Equal("Unknown", Kind(42).String())
}
