package client

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// AllowAllClients is the wildcard entry of Params.AllowedClients.
const AllowAllClients = "*"

// Params of the client subsystem.
type Params struct {
	AllowedClients []string
}

func DefaultParams() Params {
	return Params{AllowedClients: []string{AllowAllClients}}
}

func (p Params) IsAllowedClient(clientType string) bool {
	for _, allowed := range p.AllowedClients {
		if allowed == AllowAllClients || allowed == clientType {
			return true
		}
	}
	return false
}

// Keeper implements the client subsystem. It holds no state of its own: every
// operation reads and writes through the host supplied context.
type Keeper struct {
	params Params
	logger log.Logger
}

func NewKeeper(params Params, logger log.Logger) Keeper {
	return Keeper{params: params, logger: logger.With("module", "ibc/"+SubModuleName)}
}

func (k Keeper) Params() Params {
	return k.params
}

// CreateClient stores the initial client and consensus state under a freshly
// generated client identifier.
func (k Keeper) CreateClient(ctx ExecutionContext, clientState ClientState, consensusState ConsensusState) (string, error) {
	clientType := clientState.ClientType()
	if err := host.ClientTypeValidator(clientType); err != nil {
		return "", sdkerrors.Wrap(ErrInvalidClientType, err.Error())
	}
	if !k.params.IsAllowedClient(clientType) {
		return "", sdkerrors.Wrapf(ErrInvalidClientType, "client type %s is not in the allowed client list", clientType)
	}
	if err := clientState.Validate(); err != nil {
		return "", sdkerrors.Wrap(ErrInvalidClientState, err.Error())
	}
	if consensusState.ClientType() != clientType {
		return "", sdkerrors.Wrapf(ErrInvalidConsensus, "consensus state type %s does not match client type %s", consensusState.ClientType(), clientType)
	}
	if err := consensusState.ValidateBasic(); err != nil {
		return "", sdkerrors.Wrap(ErrInvalidConsensus, err.Error())
	}

	sequence, err := ctx.ClientCounter()
	if err != nil {
		return "", err
	}
	clientID := host.FormatClientIdentifier(clientType, sequence)
	if err := host.ClientIdentifierValidator(clientID); err != nil {
		return "", err
	}
	if _, err := ctx.ClientState(clientID); err == nil {
		return "", sdkerrors.Wrapf(ErrClientExists, "client %s", clientID)
	}

	height := clientState.GetLatestHeight()
	if err := ctx.SetClientState(clientID, clientState); err != nil {
		return "", err
	}
	if err := k.setConsensusState(ctx, clientID, height, consensusState); err != nil {
		return "", err
	}
	if err := ctx.IncreaseClientCounter(); err != nil {
		return "", err
	}

	if status := k.status(ctx, clientID, clientState); status != Active {
		return "", statusError(clientID, status)
	}

	k.logger.Info("client created", "client-id", clientID, "client-type", clientType, "height", height.String())
	emitCreateClientEvent(ctx, clientID, clientState)
	return clientID, nil
}

// UpdateClient verifies msg with the light client of clientID and stores the
// resulting consensus state. Evidence of misbehaviour found while verifying the
// header freezes the client instead.
func (k Keeper) UpdateClient(ctx ExecutionContext, clientID string, msg ClientMessage) error {
	clientState, err := ctx.ClientState(clientID)
	if err != nil {
		return err
	}
	if status := k.status(ctx, clientID, clientState); status != Active {
		return sdkerrors.Wrap(statusError(clientID, status), "cannot update client")
	}
	if msg.ClientType() != clientState.ClientType() {
		return sdkerrors.Wrapf(ErrInvalidHeader, "header type %s does not match client type %s", msg.ClientType(), clientState.ClientType())
	}

	reader := NewClientReader(ctx, clientID)
	if err := clientState.VerifyClientMessage(reader, msg); err != nil {
		return err
	}

	if clientState.CheckForMisbehaviour(reader, msg) {
		frozen := clientState.UpdateStateOnMisbehaviour(msg)
		if err := ctx.SetClientState(clientID, frozen); err != nil {
			return err
		}
		k.logger.Info("client frozen due to misbehaviour", "client-id", clientID)
		emitSubmitMisbehaviourEvent(ctx, clientID, frozen)
		return nil
	}

	newClientState, consensusState, height, err := clientState.UpdateState(msg)
	if err != nil {
		return err
	}
	if _, err := ctx.ConsensusState(clientID, height); err == nil {
		// an identical consensus state is already stored
		k.logger.Debug("duplicate header ignored", "client-id", clientID, "height", height.String())
		return nil
	}
	if newClientState.GetLatestHeight().LT(clientState.GetLatestHeight()) {
		return sdkerrors.Wrapf(ErrInvalidHeight, "latest height %s would go back to %s", clientState.GetLatestHeight(), newClientState.GetLatestHeight())
	}

	if err := ctx.SetClientState(clientID, newClientState); err != nil {
		return err
	}
	if err := k.setConsensusState(ctx, clientID, height, consensusState); err != nil {
		return err
	}

	k.logger.Info("client updated", "client-id", clientID, "height", height.String())
	emitUpdateClientEvent(ctx, clientID, newClientState, height)
	return nil
}

// SubmitMisbehaviour freezes clientID when misbehaviour is valid evidence
// against it.
func (k Keeper) SubmitMisbehaviour(ctx ExecutionContext, clientID string, misbehaviour ClientMessage) error {
	clientState, err := ctx.ClientState(clientID)
	if err != nil {
		return err
	}
	if status := k.status(ctx, clientID, clientState); status != Active {
		return sdkerrors.Wrap(statusError(clientID, status), "cannot submit misbehaviour")
	}
	if misbehaviour.ClientType() != clientState.ClientType() {
		return sdkerrors.Wrapf(ErrInvalidMisbehaviour, "misbehaviour type %s does not match client type %s", misbehaviour.ClientType(), clientState.ClientType())
	}

	reader := NewClientReader(ctx, clientID)
	if err := clientState.VerifyClientMessage(reader, misbehaviour); err != nil {
		return err
	}
	if !clientState.CheckForMisbehaviour(reader, misbehaviour) {
		return sdkerrors.Wrapf(ErrInvalidMisbehaviour, "evidence does not prove misbehaviour of client %s", clientID)
	}

	frozen := clientState.UpdateStateOnMisbehaviour(misbehaviour)
	if err := ctx.SetClientState(clientID, frozen); err != nil {
		return err
	}

	k.logger.Info("client frozen due to misbehaviour", "client-id", clientID)
	emitSubmitMisbehaviourEvent(ctx, clientID, frozen)
	return nil
}

// RecoverClient replaces a frozen or expired client with the state of an
// active substitute of the same type.
func (k Keeper) RecoverClient(ctx ExecutionContext, subjectID, substituteID string) error {
	subject, err := ctx.ClientState(subjectID)
	if err != nil {
		return sdkerrors.Wrap(err, "subject client")
	}
	if status := k.status(ctx, subjectID, subject); status == Active {
		return sdkerrors.Wrapf(ErrInvalidSubstitute, "subject client %s is active", subjectID)
	}
	substitute, err := ctx.ClientState(substituteID)
	if err != nil {
		return sdkerrors.Wrap(err, "substitute client")
	}
	if status := k.status(ctx, substituteID, substitute); status != Active {
		return sdkerrors.Wrapf(ErrInvalidSubstitute, "substitute client %s is %s", substituteID, status)
	}
	if subject.GetLatestHeight().GTE(substitute.GetLatestHeight()) {
		return sdkerrors.Wrapf(ErrInvalidSubstitute, "substitute height %s must be greater than subject height %s", substitute.GetLatestHeight(), subject.GetLatestHeight())
	}

	recovered, err := subject.CheckSubstituteAndUpdateState(substitute)
	if err != nil {
		return err
	}
	height := substitute.GetLatestHeight()
	consensusState, err := ctx.ConsensusState(substituteID, height)
	if err != nil {
		return err
	}

	if err := ctx.SetClientState(subjectID, recovered); err != nil {
		return err
	}
	if err := k.setConsensusState(ctx, subjectID, height, consensusState); err != nil {
		return err
	}

	k.logger.Info("client recovered", "subject", subjectID, "substitute", substituteID, "height", height.String())
	emitRecoverClientEvent(ctx, subjectID, substituteID, recovered)
	return nil
}

// VerifyMembership verifies a proof of path -> value against the consensus
// state of clientID at or below height, once the delay period has elapsed.
func (k Keeper) VerifyMembership(
	ctx ValidationContext,
	clientID string,
	height Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof []byte,
	path commitment.Path,
	value []byte,
) error {
	clientState, consensusState, err := k.verificationArgs(ctx, clientID, height, delayTimePeriod, delayBlockPeriod)
	if err != nil {
		return err
	}
	if err := clientState.VerifyMembership(consensusState, proof, path, value); err != nil {
		k.logProofRejected(clientID, height, path, err)
		return err
	}
	return nil
}

// VerifyNonMembership verifies a proof of absence of path against the
// consensus state of clientID at or below height.
func (k Keeper) VerifyNonMembership(
	ctx ValidationContext,
	clientID string,
	height Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof []byte,
	path commitment.Path,
) error {
	clientState, consensusState, err := k.verificationArgs(ctx, clientID, height, delayTimePeriod, delayBlockPeriod)
	if err != nil {
		return err
	}
	if err := clientState.VerifyNonMembership(consensusState, proof, path); err != nil {
		k.logProofRejected(clientID, height, path, err)
		return err
	}
	return nil
}

func (k Keeper) logProofRejected(clientID string, height Height, path commitment.Path, err error) {
	if reason := commitment.Reason(err); reason != nil {
		k.logger.Debug("proof rejected", "client-id", clientID, "height", height.String(), "path", path.String(), "reason", reason.Error())
	}
}

// Status returns the status of clientID, or Unknown when it does not exist.
func (k Keeper) Status(ctx ValidationContext, clientID string) Status {
	clientState, err := ctx.ClientState(clientID)
	if err != nil {
		return Unknown
	}
	return k.status(ctx, clientID, clientState)
}

// TimestampAtHeight returns the timestamp of the consensus state of clientID
// at or below height, and the height that consensus state is stored at.
// Proofs at height are verified against that same consensus state.
func (k Keeper) TimestampAtHeight(ctx ValidationContext, clientID string, height Height) (uint64, Height, error) {
	consensusState, found, err := ConsensusStateAtOrBelow(ctx, clientID, height)
	if err != nil {
		return 0, Height{}, err
	}
	return consensusState.GetTimestamp(), found, nil
}

func (k Keeper) status(ctx ValidationContext, clientID string, clientState ClientState) Status {
	if !k.params.IsAllowedClient(clientState.ClientType()) {
		return Unauthorized
	}
	return clientState.Status(NewClientReader(ctx, clientID))
}

func (k Keeper) setConsensusState(ctx ExecutionContext, clientID string, height Height, consensusState ConsensusState) error {
	if err := ctx.SetConsensusState(clientID, height, consensusState); err != nil {
		return err
	}
	return ctx.SetClientProcessed(clientID, height, ctx.HostTimestamp(), ctx.HostHeight())
}

func (k Keeper) verificationArgs(
	ctx ValidationContext,
	clientID string,
	height Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
) (ClientState, ConsensusState, error) {
	clientState, err := ctx.ClientState(clientID)
	if err != nil {
		return nil, nil, err
	}
	if status := k.status(ctx, clientID, clientState); status != Active {
		return nil, nil, sdkerrors.Wrap(statusError(clientID, status), "cannot verify proof")
	}
	if clientState.GetLatestHeight().LT(height) {
		return nil, nil, sdkerrors.Wrapf(ErrInvalidHeight, "client %s latest height %s is lower than proof height %s", clientID, clientState.GetLatestHeight(), height)
	}
	consensusState, found, err := ConsensusStateAtOrBelow(ctx, clientID, height)
	if err != nil {
		return nil, nil, err
	}
	if err := verifyDelayPeriodPassed(ctx, clientID, found, delayTimePeriod, delayBlockPeriod); err != nil {
		return nil, nil, err
	}
	return clientState, consensusState, nil
}

// verifyDelayPeriodPassed checks that both the time and the block delay have
// elapsed since the consensus state at height was stored.
func verifyDelayPeriodPassed(ctx ValidationContext, clientID string, height Height, delayTimePeriod, delayBlockPeriod uint64) error {
	if delayTimePeriod != 0 {
		processedTime, ok := ctx.ClientProcessedTime(clientID, height)
		if !ok {
			return sdkerrors.Wrapf(ErrProcessedTimeNotFound, "client %s height %s", clientID, height)
		}
		currentTimestamp := ctx.HostTimestamp()
		validTime := processedTime + delayTimePeriod
		if currentTimestamp < validTime {
			return sdkerrors.Wrapf(ErrDelayPeriodNotPassed, "cannot verify packet until time: %d, current time: %d", validTime, currentTimestamp)
		}
	}
	if delayBlockPeriod != 0 {
		processedHeight, ok := ctx.ClientProcessedHeight(clientID, height)
		if !ok {
			return sdkerrors.Wrapf(ErrProcessedHeightNotFound, "client %s height %s", clientID, height)
		}
		currentHeight := ctx.HostHeight()
		validHeight := NewHeight(processedHeight.RevisionNumber, processedHeight.RevisionHeight+delayBlockPeriod)
		if currentHeight.LT(validHeight) {
			return sdkerrors.Wrapf(ErrDelayPeriodNotPassed, "cannot verify packet until height: %s, current height: %s", validHeight, currentHeight)
		}
	}
	return nil
}

func statusError(clientID string, status Status) error {
	switch status {
	case Active:
		return nil
	case Frozen:
		return sdkerrors.Wrapf(ErrClientFrozen, "client %s", clientID)
	case Expired:
		return sdkerrors.Wrapf(ErrClientExpired, "client %s", clientID)
	default:
		return sdkerrors.Wrapf(ErrClientNotActive, "client %s status is %s", clientID, status)
	}
}
