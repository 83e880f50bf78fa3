package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	proto "github.com/gogo/protobuf/proto"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// CheckSubstituteAndUpdateState returns the subject client recovered from an
// active substitute client that tracks the same chain with the same proof
// format. The attestation key and trusting period are taken from the
// substitute, which allows rotating a compromised key.
func (cs ClientState) CheckSubstituteAndUpdateState(substitute client.ClientState) (client.ClientState, error) {
	sub, ok := substitute.(*ClientState)
	if !ok {
		return nil, sdkerrors.Wrapf(client.ErrInvalidSubstitute, "expected %T, got %T", &ClientState{}, substitute)
	}
	if sub.ChainID != cs.ChainID {
		return nil, sdkerrors.Wrapf(client.ErrInvalidSubstitute, "substitute chain id %s does not match subject chain id %s", sub.ChainID, cs.ChainID)
	}
	if len(sub.ProofSpecs) != len(cs.ProofSpecs) {
		return nil, sdkerrors.Wrap(client.ErrInvalidSubstitute, "proof specs do not match")
	}
	for i := range sub.ProofSpecs {
		if !proto.Equal(sub.ProofSpecs[i], cs.ProofSpecs[i]) {
			return nil, sdkerrors.Wrapf(client.ErrInvalidSubstitute, "proof spec %d does not match", i)
		}
	}

	cs.FrozenHeight = client.ZeroHeight()
	cs.LatestHeight = sub.LatestHeight
	cs.PubKey = sub.PubKey
	cs.TrustingPeriod = sub.TrustingPeriod
	cs.MaxClockDrift = sub.MaxClockDrift
	return &cs, nil
}
