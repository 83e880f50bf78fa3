package client

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

const (
	TypeMsgCreateClient       = "create_client"
	TypeMsgUpdateClient       = "update_client"
	TypeMsgSubmitMisbehaviour = "submit_misbehaviour"
)

// MsgCreateClient creates a client from an initial client and consensus state.
type MsgCreateClient struct {
	ClientState    ClientState
	ConsensusState ConsensusState
	Signer         string
}

func NewMsgCreateClient(clientState ClientState, consensusState ConsensusState, signer string) *MsgCreateClient {
	return &MsgCreateClient{ClientState: clientState, ConsensusState: consensusState, Signer: signer}
}

func (msg MsgCreateClient) Type() string { return TypeMsgCreateClient }

func (msg MsgCreateClient) GetSigner() string { return msg.Signer }

func (msg MsgCreateClient) ValidateBasic() error {
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	if msg.ClientState == nil {
		return sdkerrors.Wrap(ErrInvalidClientState, "client state cannot be nil")
	}
	if err := msg.ClientState.Validate(); err != nil {
		return sdkerrors.Wrap(ErrInvalidClientState, err.Error())
	}
	if msg.ConsensusState == nil {
		return sdkerrors.Wrap(ErrInvalidConsensus, "consensus state cannot be nil")
	}
	if msg.ClientState.ClientType() != msg.ConsensusState.ClientType() {
		return sdkerrors.Wrapf(ErrInvalidClientType, "client type %s does not match consensus state type %s", msg.ClientState.ClientType(), msg.ConsensusState.ClientType())
	}
	return msg.ConsensusState.ValidateBasic()
}

// MsgUpdateClient updates a client with a new header.
type MsgUpdateClient struct {
	ClientID      string
	ClientMessage ClientMessage
	Signer        string
}

func NewMsgUpdateClient(clientID string, header ClientMessage, signer string) *MsgUpdateClient {
	return &MsgUpdateClient{ClientID: clientID, ClientMessage: header, Signer: signer}
}

func (msg MsgUpdateClient) Type() string { return TypeMsgUpdateClient }

func (msg MsgUpdateClient) GetSigner() string { return msg.Signer }

func (msg MsgUpdateClient) ValidateBasic() error {
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	if err := host.ClientIdentifierValidator(msg.ClientID); err != nil {
		return err
	}
	if msg.ClientMessage == nil {
		return sdkerrors.Wrap(ErrInvalidHeader, "header cannot be nil")
	}
	if err := msg.ClientMessage.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(ErrInvalidHeader, err.Error())
	}
	return nil
}

// MsgSubmitMisbehaviour freezes a client with evidence of misbehaviour.
type MsgSubmitMisbehaviour struct {
	ClientID     string
	Misbehaviour ClientMessage
	Signer       string
}

func NewMsgSubmitMisbehaviour(clientID string, misbehaviour ClientMessage, signer string) *MsgSubmitMisbehaviour {
	return &MsgSubmitMisbehaviour{ClientID: clientID, Misbehaviour: misbehaviour, Signer: signer}
}

func (msg MsgSubmitMisbehaviour) Type() string { return TypeMsgSubmitMisbehaviour }

func (msg MsgSubmitMisbehaviour) GetSigner() string { return msg.Signer }

func (msg MsgSubmitMisbehaviour) ValidateBasic() error {
	if err := host.ValidateSigner(msg.Signer); err != nil {
		return err
	}
	if err := host.ClientIdentifierValidator(msg.ClientID); err != nil {
		return err
	}
	if msg.Misbehaviour == nil {
		return sdkerrors.Wrap(ErrInvalidMisbehaviour, "misbehaviour cannot be nil")
	}
	if err := msg.Misbehaviour.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(ErrInvalidMisbehaviour, err.Error())
	}
	return nil
}
