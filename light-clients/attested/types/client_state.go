package types

import (
	"strings"
	"time"

	ics23 "github.com/confio/ics23/go"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	proto "github.com/gogo/protobuf/proto"
	"github.com/tendermint/tendermint/crypto/ed25519"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// ClientType of headers attested by a single ed25519 key.
const ClientType = "xx-attested"

var _ client.ClientState = (*ClientState)(nil)

// ClientState tracks a counterparty whose block headers are signed by a known
// attestation key.
type ClientState struct {
	ChainID        string
	PubKey         ed25519.PubKey
	TrustingPeriod time.Duration
	MaxClockDrift  time.Duration
	LatestHeight   client.Height
	FrozenHeight   client.Height
	ProofSpecs     []*ics23.ProofSpec
}

// NewClientState creates a new ClientState instance
func NewClientState(
	chainID string,
	pubKey ed25519.PubKey,
	trustingPeriod, maxClockDrift time.Duration,
	latestHeight client.Height,
	specs []*ics23.ProofSpec,
) *ClientState {
	return &ClientState{
		ChainID:        chainID,
		PubKey:         pubKey,
		TrustingPeriod: trustingPeriod,
		MaxClockDrift:  maxClockDrift,
		LatestHeight:   latestHeight,
		ProofSpecs:     specs,
	}
}

func (cs ClientState) ClientType() string {
	return ClientType
}

func (cs ClientState) GetLatestHeight() client.Height {
	return cs.LatestHeight
}

func (cs ClientState) IsFrozen() bool {
	return !cs.FrozenHeight.IsZero()
}

// Validate performs a basic validation of the client state fields.
func (cs ClientState) Validate() error {
	if strings.TrimSpace(cs.ChainID) == "" {
		return sdkerrors.Wrap(client.ErrInvalidClientState, "chain id cannot be blank")
	}
	if len(cs.PubKey) != ed25519.PubKeySize {
		return sdkerrors.Wrapf(client.ErrInvalidClientState, "public key must be %d bytes, got %d", ed25519.PubKeySize, len(cs.PubKey))
	}
	if cs.TrustingPeriod <= 0 {
		return sdkerrors.Wrapf(client.ErrInvalidClientState, "trusting period must be greater than zero, got %s", cs.TrustingPeriod)
	}
	if cs.MaxClockDrift < 0 {
		return sdkerrors.Wrapf(client.ErrInvalidClientState, "max clock drift cannot be negative, got %s", cs.MaxClockDrift)
	}
	if cs.LatestHeight.RevisionHeight == 0 {
		return sdkerrors.Wrap(client.ErrInvalidClientState, "latest revision height cannot be zero")
	}
	if rn := client.ParseChainID(cs.ChainID); rn != cs.LatestHeight.RevisionNumber {
		return sdkerrors.Wrapf(client.ErrInvalidClientState, "latest height revision number %d does not match chain id revision %d", cs.LatestHeight.RevisionNumber, rn)
	}
	if len(cs.ProofSpecs) == 0 {
		return sdkerrors.Wrap(client.ErrInvalidClientState, "proof specs cannot be empty")
	}
	for i, spec := range cs.ProofSpecs {
		if spec == nil {
			return sdkerrors.Wrapf(client.ErrInvalidClientState, "proof spec %d cannot be nil", i)
		}
	}
	return nil
}

// Status returns Frozen after misbehaviour, Expired once the latest consensus
// state is older than the trusting period, and Active otherwise.
func (cs ClientState) Status(reader client.ClientReader) client.Status {
	if cs.IsFrozen() {
		return client.Frozen
	}
	consState, ok := reader.ConsensusState(cs.LatestHeight)
	if !ok {
		// the latest consensus state was pruned or never stored
		return client.Expired
	}
	if cs.IsExpired(consState.GetTimestamp(), reader.HostTimestamp()) {
		return client.Expired
	}
	return client.Active
}

// IsExpired reports whether a consensus state with the given timestamp is
// outside of the trusting period at now. Both are unix nanoseconds.
func (cs ClientState) IsExpired(timestamp, now uint64) bool {
	expirationTime := time.Unix(0, int64(timestamp)).Add(cs.TrustingPeriod)
	return !expirationTime.After(time.Unix(0, int64(now)))
}

// VerifyMembership verifies that path -> value is committed in the root of consensusState.
func (cs ClientState) VerifyMembership(consensusState client.ConsensusState, proof []byte, path commitment.Path, value []byte) error {
	consState, err := produceVerificationArgs(consensusState)
	if err != nil {
		return err
	}
	return commitment.VerifyMembership(cs.ProofSpecs, consState.Root, proof, path, value)
}

// VerifyNonMembership verifies that path is absent from the root of consensusState.
func (cs ClientState) VerifyNonMembership(consensusState client.ConsensusState, proof []byte, path commitment.Path) error {
	consState, err := produceVerificationArgs(consensusState)
	if err != nil {
		return err
	}
	return commitment.VerifyNonMembership(cs.ProofSpecs, consState.Root, proof, path)
}

func produceVerificationArgs(consensusState client.ConsensusState) (*ConsensusState, error) {
	consState, ok := consensusState.(*ConsensusState)
	if !ok {
		return nil, sdkerrors.Wrapf(client.ErrInvalidConsensus, "expected %T, got %T", &ConsensusState{}, consensusState)
	}
	return consState, nil
}

// Marshal encodes the client state with a fixed field layout:
// 1 chain_id, 2 pub_key, 3 trusting_period, 4 max_clock_drift,
// 5 latest_height, 6 frozen_height, 7 proof_specs.
func (cs ClientState) Marshal() []byte {
	enc := codec.NewEncoder().
		String(1, cs.ChainID).
		Bytes(2, cs.PubKey).
		Int64(3, int64(cs.TrustingPeriod)).
		Int64(4, int64(cs.MaxClockDrift)).
		Message(5, cs.LatestHeight.Marshal()).
		Message(6, cs.FrozenHeight.Marshal())
	for _, spec := range cs.ProofSpecs {
		bz, err := proto.Marshal(spec)
		if err != nil {
			panic(err)
		}
		enc.Message(7, bz)
	}
	return enc.Encode()
}

func UnmarshalClientState(bz []byte) (*ClientState, error) {
	var cs ClientState
	err := codec.DecodeFields(bz, func(f codec.Field) (err error) {
		switch f.Num {
		case 1:
			cs.ChainID = f.String()
		case 2:
			cs.PubKey = append(ed25519.PubKey(nil), f.Bytes...)
		case 3:
			cs.TrustingPeriod = time.Duration(int64(f.Varint))
		case 4:
			cs.MaxClockDrift = time.Duration(int64(f.Varint))
		case 5:
			cs.LatestHeight, err = client.UnmarshalHeight(f.Bytes)
		case 6:
			cs.FrozenHeight, err = client.UnmarshalHeight(f.Bytes)
		case 7:
			var spec ics23.ProofSpec
			if err = proto.Unmarshal(f.Bytes, &spec); err == nil {
				cs.ProofSpecs = append(cs.ProofSpecs, &spec)
			}
		}
		return err
	})
	if err != nil {
		return nil, sdkerrors.Wrap(client.ErrInvalidClientState, err.Error())
	}
	return &cs, nil
}
