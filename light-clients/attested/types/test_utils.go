package types

import (
	"time"

	"github.com/tendermint/tendermint/crypto/ed25519"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

// Attestor signs headers of one chain. Test chains use it to produce the
// headers their counterparties' clients are updated with.
type Attestor struct {
	ChainID string
	PrivKey ed25519.PrivKey
}

func NewAttestor(chainID string) *Attestor {
	return &Attestor{ChainID: chainID, PrivKey: ed25519.GenPrivKey()}
}

func (a Attestor) PubKey() ed25519.PubKey {
	return a.PrivKey.PubKey().(ed25519.PubKey)
}

// ClientState returns a client state tracking the attestor's chain at height.
func (a Attestor) ClientState(height client.Height, trustingPeriod, maxClockDrift time.Duration) *ClientState {
	return NewClientState(a.ChainID, a.PubKey(), trustingPeriod, maxClockDrift, height, commitment.DefaultProofSpecs)
}

// Attest returns a signed header of root at height, verifiable from trustedHeight.
func (a Attestor) Attest(height, trustedHeight client.Height, timestamp time.Time, root []byte) (*Header, error) {
	header := &Header{
		Height:        height,
		TrustedHeight: trustedHeight,
		Timestamp:     uint64(timestamp.UnixNano()),
		Root:          root,
	}
	if err := header.Sign(a.PrivKey, a.ChainID); err != nil {
		return nil, err
	}
	return header, nil
}
