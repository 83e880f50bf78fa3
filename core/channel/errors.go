package channel

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const SubModuleName = "channel"

var (
	ErrChannelExists                  = sdkerrors.Register(SubModuleName, 2, "channel already exists")
	ErrChannelNotFound                = sdkerrors.Register(SubModuleName, 3, "channel not found")
	ErrInvalidChannel                 = sdkerrors.Register(SubModuleName, 4, "invalid channel")
	ErrInvalidChannelState            = sdkerrors.Register(SubModuleName, 5, "channel state mismatch")
	ErrInvalidChannelOrdering         = sdkerrors.Register(SubModuleName, 6, "invalid channel ordering")
	ErrInvalidCounterparty            = sdkerrors.Register(SubModuleName, 7, "invalid counterparty channel")
	ErrInvalidChannelIdentifier       = sdkerrors.Register(SubModuleName, 8, "invalid channel identifier")
	ErrSequenceSendNotFound           = sdkerrors.Register(SubModuleName, 9, "sequence send not found")
	ErrSequenceReceiveNotFound        = sdkerrors.Register(SubModuleName, 10, "sequence receive not found")
	ErrSequenceAckNotFound            = sdkerrors.Register(SubModuleName, 11, "sequence acknowledgement not found")
	ErrInvalidPacket                  = sdkerrors.Register(SubModuleName, 12, "invalid packet")
	ErrPacketTimedOut                 = sdkerrors.Register(SubModuleName, 13, "packet timed out")
	ErrTooManyConnectionHops          = sdkerrors.Register(SubModuleName, 14, "too many connection hops")
	ErrInvalidAcknowledgement         = sdkerrors.Register(SubModuleName, 15, "invalid acknowledgement")
	ErrAcknowledgementExists          = sdkerrors.Register(SubModuleName, 16, "acknowledgement for packet already exists")
	ErrInvalidChannelVersion          = sdkerrors.Register(SubModuleName, 17, "invalid channel version")
	ErrPacketCommitmentNotFound       = sdkerrors.Register(SubModuleName, 18, "packet commitment not found")
	ErrPacketAlreadyReceived          = sdkerrors.Register(SubModuleName, 19, "packet already received")
	ErrOutOfOrderPacket               = sdkerrors.Register(SubModuleName, 20, "packet sequence is out of order")
	ErrInvalidTimeout                 = sdkerrors.Register(SubModuleName, 21, "invalid packet timeout")
	ErrTimeoutNotReached              = sdkerrors.Register(SubModuleName, 22, "packet timeout has not been reached")
	ErrChannelProofVerificationFailed = sdkerrors.Register(SubModuleName, 23, "channel proof verification failed")
)
