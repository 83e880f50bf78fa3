package client

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const SubModuleName = "client"

var (
	ErrClientExists               = sdkerrors.Register(SubModuleName, 2, "light client already exists")
	ErrInvalidClient              = sdkerrors.Register(SubModuleName, 3, "light client is invalid")
	ErrClientNotFound             = sdkerrors.Register(SubModuleName, 4, "light client not found")
	ErrClientFrozen               = sdkerrors.Register(SubModuleName, 5, "light client is frozen due to misbehaviour")
	ErrInvalidClientState         = sdkerrors.Register(SubModuleName, 6, "invalid client state")
	ErrConsensusStateNotFound     = sdkerrors.Register(SubModuleName, 7, "consensus state not found")
	ErrInvalidConsensus           = sdkerrors.Register(SubModuleName, 8, "invalid consensus state")
	ErrClientTypeNotFound         = sdkerrors.Register(SubModuleName, 9, "client type not found")
	ErrInvalidClientType          = sdkerrors.Register(SubModuleName, 10, "invalid client type")
	ErrInvalidHeader              = sdkerrors.Register(SubModuleName, 11, "invalid client header")
	ErrInvalidMisbehaviour        = sdkerrors.Register(SubModuleName, 12, "invalid light client misbehaviour")
	ErrClientExpired              = sdkerrors.Register(SubModuleName, 13, "light client is expired")
	ErrClientNotActive            = sdkerrors.Register(SubModuleName, 14, "light client is not active")
	ErrInvalidHeight              = sdkerrors.Register(SubModuleName, 15, "invalid height")
	ErrProcessedTimeNotFound      = sdkerrors.Register(SubModuleName, 16, "processed time not found")
	ErrProcessedHeightNotFound    = sdkerrors.Register(SubModuleName, 17, "processed height not found")
	ErrDelayPeriodNotPassed       = sdkerrors.Register(SubModuleName, 18, "delay period has not been reached")
	ErrInvalidSubstitute          = sdkerrors.Register(SubModuleName, 19, "invalid client state substitute")
	ErrSelfConsensusStateNotFound = sdkerrors.Register(SubModuleName, 20, "self consensus state not found")
	ErrInvalidSelfClient          = sdkerrors.Register(SubModuleName, 21, "invalid client of this chain")
)
