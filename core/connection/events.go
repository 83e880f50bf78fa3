package connection

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	EventTypeConnectionOpenInit    = "connection_open_init"
	EventTypeConnectionOpenTry     = "connection_open_try"
	EventTypeConnectionOpenAck     = "connection_open_ack"
	EventTypeConnectionOpenConfirm = "connection_open_confirm"

	AttributeKeyConnectionID             = "connection_id"
	AttributeKeyClientID                 = "client_id"
	AttributeKeyCounterpartyClientID     = "counterparty_client_id"
	AttributeKeyCounterpartyConnectionID = "counterparty_connection_id"
)

func emitConnectionOpenInitEvent(ctx ExecutionContext, connectionID, clientID string, counterparty Counterparty) {
	ctx.EmitEvent(sdk.NewEvent(
		EventTypeConnectionOpenInit,
		sdk.NewAttribute(AttributeKeyConnectionID, connectionID),
		sdk.NewAttribute(AttributeKeyClientID, clientID),
		sdk.NewAttribute(AttributeKeyCounterpartyClientID, counterparty.ClientID),
	))
}

func emitConnectionOpenTryEvent(ctx ExecutionContext, connectionID, clientID string, counterparty Counterparty) {
	ctx.EmitEvent(sdk.NewEvent(
		EventTypeConnectionOpenTry,
		sdk.NewAttribute(AttributeKeyConnectionID, connectionID),
		sdk.NewAttribute(AttributeKeyClientID, clientID),
		sdk.NewAttribute(AttributeKeyCounterpartyClientID, counterparty.ClientID),
		sdk.NewAttribute(AttributeKeyCounterpartyConnectionID, counterparty.ConnectionID),
	))
}

func emitConnectionOpenAckEvent(ctx ExecutionContext, connectionID string, connection ConnectionEnd) {
	ctx.EmitEvent(sdk.NewEvent(
		EventTypeConnectionOpenAck,
		sdk.NewAttribute(AttributeKeyConnectionID, connectionID),
		sdk.NewAttribute(AttributeKeyClientID, connection.ClientID),
		sdk.NewAttribute(AttributeKeyCounterpartyClientID, connection.Counterparty.ClientID),
		sdk.NewAttribute(AttributeKeyCounterpartyConnectionID, connection.Counterparty.ConnectionID),
	))
}

func emitConnectionOpenConfirmEvent(ctx ExecutionContext, connectionID string, connection ConnectionEnd) {
	ctx.EmitEvent(sdk.NewEvent(
		EventTypeConnectionOpenConfirm,
		sdk.NewAttribute(AttributeKeyConnectionID, connectionID),
		sdk.NewAttribute(AttributeKeyClientID, connection.ClientID),
		sdk.NewAttribute(AttributeKeyCounterpartyClientID, connection.Counterparty.ClientID),
		sdk.NewAttribute(AttributeKeyCounterpartyConnectionID, connection.Counterparty.ConnectionID),
	))
}
