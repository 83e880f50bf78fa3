package port

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// Context is what a module sees of the host while one of its callbacks runs.
// Writes to the module store are committed together with the datagram.
type Context interface {
	HostHeight() client.Height
	HostTimestamp() uint64
	EmitEvent(event sdk.Event)
	// ModuleStore returns the private store of the module bound to portID.
	ModuleStore(portID string) storetypes.KVStore
}

// Module defines an interface that implements all the callbacks that modules
// must define as specified in ICS-26. An error returned from any callback
// rejects the whole datagram.
type Module interface {
	// OnChanOpenInit returns the version the module proposes. An empty
	// proposed version lets the module pick its default.
	OnChanOpenInit(
		ctx Context,
		order channel.Order,
		connectionHops []string,
		portID string,
		channelID string,
		counterparty channel.Counterparty,
		version string,
	) (string, error)

	// OnChanOpenTry returns the version the module accepts given the version
	// proposed by the counterparty module.
	OnChanOpenTry(
		ctx Context,
		order channel.Order,
		connectionHops []string,
		portID,
		channelID string,
		counterparty channel.Counterparty,
		counterpartyVersion string,
	) (string, error)

	OnChanOpenAck(
		ctx Context,
		portID,
		channelID string,
		counterpartyChannelID string,
		counterpartyVersion string,
	) error

	OnChanOpenConfirm(
		ctx Context,
		portID,
		channelID string,
	) error

	// OnChanCloseInit may veto a closing initiated on this end.
	OnChanCloseInit(
		ctx Context,
		portID,
		channelID string,
	) error

	OnChanCloseConfirm(
		ctx Context,
		portID,
		channelID string,
	) error

	// OnRecvPacket must return an acknowledgement. A nil acknowledgement means
	// the module writes it later with WriteAcknowledgement. Module state is
	// only committed for successful acknowledgements.
	OnRecvPacket(
		ctx Context,
		packet channel.Packet,
		relayer string,
	) (channel.AcknowledgementI, error)

	OnAcknowledgementPacket(
		ctx Context,
		packet channel.Packet,
		acknowledgement []byte,
		relayer string,
	) error

	OnTimeoutPacket(
		ctx Context,
		packet channel.Packet,
		relayer string,
	) error
}
