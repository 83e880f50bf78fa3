package mock

import (
	"fmt"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/channel"
	"github.com/hyperledger-labs/yui-ibc-core/core/port"
)

const (
	ModuleName = "mock"
	PortID     = ModuleName
	Version    = "mock-version"
)

var (
	MockAcknowledgement = channel.NewResultAcknowledgement([]byte("mock acknowledgement"))
	MockPacketData      = []byte("mock packet data")
	MockFailPacketData  = []byte("mock failed packet data")
	MockAsyncPacketData = []byte("mock async packet data")

	ErrInvalidVersion = sdkerrors.Register(ModuleName, 2, "invalid mock version")
	ErrRejected       = sdkerrors.Register(ModuleName, 3, "rejected by mock module")
)

var _ port.Module = (*Module)(nil)

// Callbacks override the default behaviour of a Module. Nil fields keep the default.
type Callbacks struct {
	OnChanOpenInit          func(ctx port.Context, portID, channelID, version string) (string, error)
	OnChanOpenTry           func(ctx port.Context, portID, channelID, counterpartyVersion string) (string, error)
	OnChanOpenAck           func(ctx port.Context, portID, channelID, counterpartyVersion string) error
	OnChanOpenConfirm       func(ctx port.Context, portID, channelID string) error
	OnChanCloseInit         func(ctx port.Context, portID, channelID string) error
	OnChanCloseConfirm      func(ctx port.Context, portID, channelID string) error
	OnRecvPacket            func(ctx port.Context, packet channel.Packet) (channel.AcknowledgementI, error)
	OnAcknowledgementPacket func(ctx port.Context, packet channel.Packet, ack []byte) error
	OnTimeoutPacket         func(ctx port.Context, packet channel.Packet) error
}

// Module is an application module that records what happens to its packets
// in its module store.
//
// Received packets with MockFailPacketData get an error acknowledgement,
// packets with MockAsyncPacketData are acknowledged later, everything else
// gets MockAcknowledgement.
type Module struct {
	Callbacks Callbacks
}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) OnChanOpenInit(
	ctx port.Context,
	order channel.Order,
	connectionHops []string,
	portID string,
	channelID string,
	counterparty channel.Counterparty,
	version string,
) (string, error) {
	if m.Callbacks.OnChanOpenInit != nil {
		return m.Callbacks.OnChanOpenInit(ctx, portID, channelID, version)
	}
	if version == "" {
		return Version, nil
	}
	if version != Version {
		return "", sdkerrors.Wrapf(ErrInvalidVersion, "expected %s, got %s", Version, version)
	}
	return version, nil
}

func (m *Module) OnChanOpenTry(
	ctx port.Context,
	order channel.Order,
	connectionHops []string,
	portID,
	channelID string,
	counterparty channel.Counterparty,
	counterpartyVersion string,
) (string, error) {
	if m.Callbacks.OnChanOpenTry != nil {
		return m.Callbacks.OnChanOpenTry(ctx, portID, channelID, counterpartyVersion)
	}
	if counterpartyVersion != Version {
		return "", sdkerrors.Wrapf(ErrInvalidVersion, "expected %s, got %s", Version, counterpartyVersion)
	}
	return Version, nil
}

func (m *Module) OnChanOpenAck(
	ctx port.Context,
	portID,
	channelID string,
	counterpartyChannelID string,
	counterpartyVersion string,
) error {
	if m.Callbacks.OnChanOpenAck != nil {
		return m.Callbacks.OnChanOpenAck(ctx, portID, channelID, counterpartyVersion)
	}
	if counterpartyVersion != Version {
		return sdkerrors.Wrapf(ErrInvalidVersion, "expected %s, got %s", Version, counterpartyVersion)
	}
	return nil
}

func (m *Module) OnChanOpenConfirm(ctx port.Context, portID, channelID string) error {
	if m.Callbacks.OnChanOpenConfirm != nil {
		return m.Callbacks.OnChanOpenConfirm(ctx, portID, channelID)
	}
	return nil
}

func (m *Module) OnChanCloseInit(ctx port.Context, portID, channelID string) error {
	if m.Callbacks.OnChanCloseInit != nil {
		return m.Callbacks.OnChanCloseInit(ctx, portID, channelID)
	}
	return nil
}

func (m *Module) OnChanCloseConfirm(ctx port.Context, portID, channelID string) error {
	if m.Callbacks.OnChanCloseConfirm != nil {
		return m.Callbacks.OnChanCloseConfirm(ctx, portID, channelID)
	}
	return nil
}

func (m *Module) OnRecvPacket(ctx port.Context, packet channel.Packet, relayer string) (channel.AcknowledgementI, error) {
	if m.Callbacks.OnRecvPacket != nil {
		return m.Callbacks.OnRecvPacket(ctx, packet)
	}
	// written in every case, kept only for successful acknowledgements
	ctx.ModuleStore(packet.DestinationPort).Set(ReceivedKey(packet.DestinationChannel, packet.Sequence), packet.Data)

	switch string(packet.Data) {
	case string(MockFailPacketData):
		return channel.NewErrorAcknowledgement(sdkerrors.Wrap(ErrRejected, "failed packet data")), nil
	case string(MockAsyncPacketData):
		return nil, nil
	}
	return MockAcknowledgement, nil
}

func (m *Module) OnAcknowledgementPacket(ctx port.Context, packet channel.Packet, acknowledgement []byte, relayer string) error {
	if m.Callbacks.OnAcknowledgementPacket != nil {
		return m.Callbacks.OnAcknowledgementPacket(ctx, packet, acknowledgement)
	}
	ctx.ModuleStore(packet.SourcePort).Set(AcknowledgedKey(packet.SourceChannel, packet.Sequence), acknowledgement)
	return nil
}

func (m *Module) OnTimeoutPacket(ctx port.Context, packet channel.Packet, relayer string) error {
	if m.Callbacks.OnTimeoutPacket != nil {
		return m.Callbacks.OnTimeoutPacket(ctx, packet)
	}
	ctx.ModuleStore(packet.SourcePort).Set(TimedOutKey(packet.SourceChannel, packet.Sequence), []byte{1})
	return nil
}

// ReceivedKey is the module store key of a received packet's data.
func ReceivedKey(channelID string, sequence uint64) []byte {
	return []byte(fmt.Sprintf("received/%s/%d", channelID, sequence))
}

// AcknowledgedKey is the module store key of an acknowledged packet's acknowledgement.
func AcknowledgedKey(channelID string, sequence uint64) []byte {
	return []byte(fmt.Sprintf("acknowledged/%s/%d", channelID, sequence))
}

// TimedOutKey is the module store key marking a timed out packet.
func TimedOutKey(channelID string, sequence uint64) []byte {
	return []byte(fmt.Sprintf("timedout/%s/%d", channelID, sequence))
}
