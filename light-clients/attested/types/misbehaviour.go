package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

var _ client.ClientMessage = (*Misbehaviour)(nil)

// Misbehaviour is a pair of validly attested headers that cannot both belong
// to the same chain: either they attest different states at the same height,
// or the later header carries an earlier or equal time.
type Misbehaviour struct {
	Header1 *Header
	Header2 *Header
}

func NewMisbehaviour(header1, header2 *Header) *Misbehaviour {
	return &Misbehaviour{Header1: header1, Header2: header2}
}

func (m Misbehaviour) ClientType() string {
	return ClientType
}

// ValidateBasic requires Header1 to be at a height greater than or equal to Header2.
func (m Misbehaviour) ValidateBasic() error {
	if m.Header1 == nil || m.Header2 == nil {
		return sdkerrors.Wrap(client.ErrInvalidMisbehaviour, "misbehaviour headers cannot be nil")
	}
	if err := m.Header1.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(client.ErrInvalidMisbehaviour, err.Error())
	}
	if err := m.Header2.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(client.ErrInvalidMisbehaviour, err.Error())
	}
	if m.Header1.Height.LT(m.Header2.Height) {
		return sdkerrors.Wrapf(client.ErrInvalidMisbehaviour, "header 1 height %s is less than header 2 height %s", m.Header1.Height, m.Header2.Height)
	}
	return nil
}
