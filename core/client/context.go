package client

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// ValidationContext is the read capability the client subsystem needs from the host.
type ValidationContext interface {
	// ClientState returns ErrClientNotFound when the client does not exist.
	ClientState(clientID string) (ClientState, error)
	// ConsensusState returns ErrConsensusStateNotFound when nothing is stored at height.
	ConsensusState(clientID string, height Height) (ConsensusState, error)
	// PrevConsensusState returns the consensus state with the greatest height
	// strictly lower than height, or ErrConsensusStateNotFound.
	PrevConsensusState(clientID string, height Height) (ConsensusState, Height, error)
	// NextConsensusState returns the consensus state with the lowest height
	// strictly greater than height, or ErrConsensusStateNotFound.
	NextConsensusState(clientID string, height Height) (ConsensusState, Height, error)
	// ClientProcessedTime returns the host time a consensus state was stored at.
	ClientProcessedTime(clientID string, height Height) (uint64, bool)
	// ClientProcessedHeight returns the host height a consensus state was stored at.
	ClientProcessedHeight(clientID string, height Height) (Height, bool)
	ClientCounter() (uint64, error)

	HostHeight() Height
	// HostTimestamp returns the current block time in nanoseconds.
	HostTimestamp() uint64
}

// ExecutionContext is the write capability the client subsystem needs from the host.
type ExecutionContext interface {
	ValidationContext

	SetClientState(clientID string, clientState ClientState) error
	SetConsensusState(clientID string, height Height, consensusState ConsensusState) error
	// SetClientProcessed records when a consensus state was stored, for delay period checks.
	SetClientProcessed(clientID string, height Height, processedTime uint64, processedHeight Height) error
	IncreaseClientCounter() error

	EmitEvent(event sdk.Event)
}

// clientReader scopes a ValidationContext to a single client.
type clientReader struct {
	ctx      ValidationContext
	clientID string
}

var _ ClientReader = clientReader{}

func NewClientReader(ctx ValidationContext, clientID string) ClientReader {
	return clientReader{ctx: ctx, clientID: clientID}
}

func (r clientReader) ConsensusState(height Height) (ConsensusState, bool) {
	cs, err := r.ctx.ConsensusState(r.clientID, height)
	if err != nil {
		return nil, false
	}
	return cs, true
}

func (r clientReader) PrevConsensusState(height Height) (ConsensusState, Height, bool) {
	cs, h, err := r.ctx.PrevConsensusState(r.clientID, height)
	if err != nil {
		return nil, Height{}, false
	}
	return cs, h, true
}

func (r clientReader) NextConsensusState(height Height) (ConsensusState, Height, bool) {
	cs, h, err := r.ctx.NextConsensusState(r.clientID, height)
	if err != nil {
		return nil, Height{}, false
	}
	return cs, h, true
}

func (r clientReader) HostTimestamp() uint64 {
	return r.ctx.HostTimestamp()
}

// ConsensusStateAtOrBelow returns the consensus state stored at height or, when
// there is none, the closest one below it.
func ConsensusStateAtOrBelow(ctx ValidationContext, clientID string, height Height) (ConsensusState, Height, error) {
	cs, err := ctx.ConsensusState(clientID, height)
	if err == nil {
		return cs, height, nil
	}
	if !sdkerrors.IsOf(err, ErrConsensusStateNotFound) {
		return nil, Height{}, err
	}
	cs, found, err := ctx.PrevConsensusState(clientID, height)
	if err != nil {
		return nil, Height{}, sdkerrors.Wrapf(ErrConsensusStateNotFound, "client %s has no consensus state at or below %s", clientID, height)
	}
	return cs, found, nil
}
