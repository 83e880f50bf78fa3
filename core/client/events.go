package client

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	EventTypeCreateClient       = "create_client"
	EventTypeUpdateClient       = "update_client"
	EventTypeSubmitMisbehaviour = "client_misbehaviour"
	EventTypeRecoverClient      = "recover_client"

	AttributeKeyClientID           = "client_id"
	AttributeKeyClientType         = "client_type"
	AttributeKeyConsensusHeight    = "consensus_height"
	AttributeKeySubjectClientID    = "subject_client_id"
	AttributeKeySubstituteClientID = "substitute_client_id"
)

func emitCreateClientEvent(ctx ExecutionContext, clientID string, cs ClientState) {
	ctx.EmitEvent(sdk.NewEvent(
		EventTypeCreateClient,
		sdk.NewAttribute(AttributeKeyClientID, clientID),
		sdk.NewAttribute(AttributeKeyClientType, cs.ClientType()),
		sdk.NewAttribute(AttributeKeyConsensusHeight, cs.GetLatestHeight().String()),
	))
}

func emitUpdateClientEvent(ctx ExecutionContext, clientID string, cs ClientState, height Height) {
	ctx.EmitEvent(sdk.NewEvent(
		EventTypeUpdateClient,
		sdk.NewAttribute(AttributeKeyClientID, clientID),
		sdk.NewAttribute(AttributeKeyClientType, cs.ClientType()),
		sdk.NewAttribute(AttributeKeyConsensusHeight, height.String()),
	))
}

func emitSubmitMisbehaviourEvent(ctx ExecutionContext, clientID string, cs ClientState) {
	ctx.EmitEvent(sdk.NewEvent(
		EventTypeSubmitMisbehaviour,
		sdk.NewAttribute(AttributeKeyClientID, clientID),
		sdk.NewAttribute(AttributeKeyClientType, cs.ClientType()),
	))
}

func emitRecoverClientEvent(ctx ExecutionContext, subjectID, substituteID string, cs ClientState) {
	ctx.EmitEvent(sdk.NewEvent(
		EventTypeRecoverClient,
		sdk.NewAttribute(AttributeKeySubjectClientID, subjectID),
		sdk.NewAttribute(AttributeKeySubstituteClientID, substituteID),
		sdk.NewAttribute(AttributeKeyClientType, cs.ClientType()),
	))
}
