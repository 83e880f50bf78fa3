package connection

import (
	"errors"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// DefaultMaxExpectedTimePerBlock is used to derive the block delay of a connection.
const DefaultMaxExpectedTimePerBlock = 30 * time.Second

// Params of the connection subsystem.
type Params struct {
	// MaxExpectedTimePerBlock converts the time delay of a connection into a block delay.
	MaxExpectedTimePerBlock time.Duration
	// Versions are the supported connection versions in order of preference.
	Versions []Version
}

func DefaultParams() Params {
	return Params{
		MaxExpectedTimePerBlock: DefaultMaxExpectedTimePerBlock,
		Versions:                GetCompatibleVersions(),
	}
}

// Keeper implements the connection handshake. Proofs are verified through the
// client keeper against the client the connection is built on.
type Keeper struct {
	clientKeeper client.Keeper
	params       Params
	logger       log.Logger
}

func NewKeeper(params Params, clientKeeper client.Keeper, logger log.Logger) Keeper {
	if len(params.Versions) == 0 {
		params.Versions = GetCompatibleVersions()
	}
	return Keeper{
		clientKeeper: clientKeeper,
		params:       params,
		logger:       logger.With("module", "ibc/"+SubModuleName),
	}
}

func (k Keeper) Params() Params {
	return k.params
}

// GetConnection returns the connection end of connectionID.
func (k Keeper) GetConnection(ctx ValidationContext, connectionID string) (ConnectionEnd, error) {
	return ctx.ConnectionEnd(connectionID)
}

// ConnOpenInit initialises a connection attempt on chain A. The generated
// connection identifier is returned.
//
// NOTE: Msg validation verifies the supplied identifiers and ensures that the
// counterparty connection identifier is empty.
func (k Keeper) ConnOpenInit(
	ctx ExecutionContext,
	clientID string,
	counterparty Counterparty,
	version *Version,
	delayPeriod uint64,
) (string, error) {
	versions := k.params.Versions
	if version != nil {
		if !IsSupportedVersion(k.params.Versions, *version) {
			return "", sdkerrors.Wrap(ErrInvalidVersion, "version is not supported")
		}
		versions = []Version{*version}
	}

	if status := k.clientKeeper.Status(ctx, clientID); status != client.Active {
		return "", sdkerrors.Wrapf(client.ErrClientNotActive, "client (%s) status is %s", clientID, status)
	}

	connectionID, err := k.generateConnectionIdentifier(ctx)
	if err != nil {
		return "", err
	}

	connection := NewConnectionEnd(INIT, clientID, counterparty, versions, delayPeriod)
	if err := k.storeConnection(ctx, clientID, connectionID, connection); err != nil {
		return "", err
	}

	k.logger.Info("connection state updated", "connection-id", connectionID, "previous-state", UNINITIALIZED.String(), "new-state", INIT.String())
	emitConnectionOpenInitEvent(ctx, connectionID, clientID, counterparty)
	return connectionID, nil
}

// ConnOpenTry relays notice of a connection attempt on chain A to chain B.
// It proves that chain A stored a connection end in INIT that points at this
// chain, and that chain A's client of this chain is valid.
func (k Keeper) ConnOpenTry(
	ctx ExecutionContext,
	counterparty Counterparty, // counterpartyConnectionIdentifier, counterpartyPrefix and counterpartyClientIdentifier
	delayPeriod uint64,
	clientID string, // clientID of chainA
	clientState client.ClientState, // clientState that chainA has for chainB
	counterpartyVersions []Version, // supported versions of chain A
	proofInit []byte, // proof that chainA stored connectionEnd in state INIT
	proofClient []byte, // proof that chainA stored a light client of chainB
	proofConsensus []byte, // proof that chainA stored chainB's consensus state at consensus height
	proofHeight client.Height, // height at which relayer constructs proof of A storing connectionEnd in state INIT
	consensusHeight client.Height, // latest height of chain B which chain A has stored in its chain B client
) (string, error) {
	if err := k.validateConsensusHeight(ctx, consensusHeight); err != nil {
		return "", err
	}
	if err := ctx.ValidateSelfClient(clientState); err != nil {
		return "", err
	}
	expectedConsensusState, err := ctx.HostConsensusState(consensusHeight)
	if err != nil {
		return "", sdkerrors.Wrapf(err, "self consensus state not found for height %s", consensusHeight)
	}

	version, err := PickVersion(k.params.Versions, counterpartyVersions)
	if err != nil {
		return "", err
	}

	// the counterparty connection id is unknown to chain A while it is in INIT
	prefix := ctx.CommitmentPrefix()
	expectedCounterparty := NewCounterparty(clientID, "", prefix)
	expectedConnection := NewConnectionEnd(INIT, counterparty.ClientID, expectedCounterparty, counterpartyVersions, delayPeriod)

	// the connection the proofs are checked with
	connection := NewConnectionEnd(TRYOPEN, clientID, counterparty, []Version{version}, delayPeriod)

	if err := k.VerifyConnectionState(ctx, connection, proofHeight, proofInit, counterparty.ConnectionID, expectedConnection); err != nil {
		return "", proofFailure(err, "connection state")
	}
	if err := k.VerifyClientState(ctx, connection, proofHeight, proofClient, clientState); err != nil {
		return "", proofFailure(err, "client state")
	}
	if err := k.VerifyClientConsensusState(ctx, connection, proofHeight, consensusHeight, proofConsensus, expectedConsensusState); err != nil {
		return "", proofFailure(err, "consensus state")
	}

	connectionID, err := k.generateConnectionIdentifier(ctx)
	if err != nil {
		return "", err
	}
	if err := k.storeConnection(ctx, clientID, connectionID, connection); err != nil {
		return "", err
	}

	k.logger.Info("connection state updated", "connection-id", connectionID, "previous-state", UNINITIALIZED.String(), "new-state", TRYOPEN.String())
	emitConnectionOpenTryEvent(ctx, connectionID, clientID, counterparty)
	return connectionID, nil
}

// ConnOpenAck relays acceptance of a connection open attempt from chain B back
// to chain A.
func (k Keeper) ConnOpenAck(
	ctx ExecutionContext,
	connectionID string,
	clientState client.ClientState, // client state for chainA on chainB
	version Version, // version that ChainB chose in ConnOpenTry
	counterpartyConnectionID string,
	proofTry []byte, // proof that connectionEnd was added to ChainB state in ConnOpenTry
	proofClient []byte, // proof of client state on chainB for chainA
	proofConsensus []byte, // proof that chainB has stored ConsensusState of chainA on its client
	proofHeight client.Height, // height that relayer constructed proofTry
	consensusHeight client.Height, // latest height of chainA that chainB has stored on its chainA client
) error {
	if err := k.validateConsensusHeight(ctx, consensusHeight); err != nil {
		return err
	}

	connection, err := ctx.ConnectionEnd(connectionID)
	if err != nil {
		return err
	}
	if connection.State != INIT {
		return sdkerrors.Wrapf(ErrConnectionStateMismatch, "connection state is not INIT (got %s)", connection.State)
	}

	// the version must be one chain A offered in ConnOpenInit
	if !IsSupportedVersion(connection.Versions, version) {
		return sdkerrors.Wrapf(ErrVersionNegotiationFailed, "connection version %v is not one of the offered versions %v", version, connection.Versions)
	}

	if err := ctx.ValidateSelfClient(clientState); err != nil {
		return err
	}
	expectedConsensusState, err := ctx.HostConsensusState(consensusHeight)
	if err != nil {
		return sdkerrors.Wrapf(err, "self consensus state not found for height %s", consensusHeight)
	}

	prefix := ctx.CommitmentPrefix()
	expectedCounterparty := NewCounterparty(connection.ClientID, connectionID, prefix)
	expectedConnection := NewConnectionEnd(TRYOPEN, connection.Counterparty.ClientID, expectedCounterparty, []Version{version}, connection.DelayPeriod)

	if err := k.VerifyConnectionState(ctx, connection, proofHeight, proofTry, counterpartyConnectionID, expectedConnection); err != nil {
		return proofFailure(err, "connection state")
	}
	if err := k.VerifyClientState(ctx, connection, proofHeight, proofClient, clientState); err != nil {
		return proofFailure(err, "client state")
	}
	if err := k.VerifyClientConsensusState(ctx, connection, proofHeight, consensusHeight, proofConsensus, expectedConsensusState); err != nil {
		return proofFailure(err, "consensus state")
	}

	connection.State = OPEN
	connection.Versions = []Version{version}
	connection.Counterparty.ConnectionID = counterpartyConnectionID
	if err := ctx.SetConnection(connectionID, connection); err != nil {
		return err
	}

	k.logger.Info("connection state updated", "connection-id", connectionID, "previous-state", INIT.String(), "new-state", OPEN.String())
	emitConnectionOpenAckEvent(ctx, connectionID, connection)
	return nil
}

// ConnOpenConfirm confirms opening of a connection on chain A to chain B, after
// which the connection is open on both chains.
func (k Keeper) ConnOpenConfirm(
	ctx ExecutionContext,
	connectionID string,
	proofAck []byte, // proof that connection opened on ChainA during ConnOpenAck
	proofHeight client.Height, // height that relayer constructed proofAck
) error {
	connection, err := ctx.ConnectionEnd(connectionID)
	if err != nil {
		return err
	}
	if connection.State != TRYOPEN {
		return sdkerrors.Wrapf(ErrConnectionStateMismatch, "connection state is not TRYOPEN (got %s)", connection.State)
	}

	prefix := ctx.CommitmentPrefix()
	expectedCounterparty := NewCounterparty(connection.ClientID, connectionID, prefix)
	expectedConnection := NewConnectionEnd(OPEN, connection.Counterparty.ClientID, expectedCounterparty, connection.Versions, connection.DelayPeriod)

	if err := k.VerifyConnectionState(ctx, connection, proofHeight, proofAck, connection.Counterparty.ConnectionID, expectedConnection); err != nil {
		return proofFailure(err, "connection state")
	}

	connection.State = OPEN
	if err := ctx.SetConnection(connectionID, connection); err != nil {
		return err
	}

	k.logger.Info("connection state updated", "connection-id", connectionID, "previous-state", TRYOPEN.String(), "new-state", OPEN.String())
	emitConnectionOpenConfirmEvent(ctx, connectionID, connection)
	return nil
}

// validateConsensusHeight requires the claimed self consensus height to be in
// the past of the host.
func (k Keeper) validateConsensusHeight(ctx ValidationContext, consensusHeight client.Height) error {
	selfHeight := ctx.HostHeight()
	if consensusHeight.GTE(selfHeight) {
		return sdkerrors.Wrapf(client.ErrInvalidHeight, "consensus height is greater than or equal to the current block height (%s >= %s)", consensusHeight, selfHeight)
	}
	return nil
}

func (k Keeper) generateConnectionIdentifier(ctx ExecutionContext) (string, error) {
	sequence, err := ctx.ConnectionCounter()
	if err != nil {
		return "", err
	}
	connectionID := host.FormatConnectionIdentifier(sequence)
	if _, err := ctx.ConnectionEnd(connectionID); err == nil {
		return "", sdkerrors.Wrap(ErrConnectionExists, connectionID)
	}
	if err := ctx.IncreaseConnectionCounter(); err != nil {
		return "", err
	}
	return connectionID, nil
}

func (k Keeper) storeConnection(ctx ExecutionContext, clientID, connectionID string, connection ConnectionEnd) error {
	if err := ctx.SetConnection(connectionID, connection); err != nil {
		return err
	}
	return ctx.AddConnectionToClient(clientID, connectionID)
}

// proofFailure reports a rejected commitment proof as a connection proof
// failure. Client faults such as a frozen client are returned as they are.
func proofFailure(err error, what string) error {
	if !errors.Is(err, commitment.ErrVerificationFailure) {
		return err
	}
	return sdkerrors.Wrapf(ErrConnectionProofVerificationFailed, "%s: %v", what, err)
}
