package channel

import (
	"encoding/json"
	"fmt"
	"reflect"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// Acknowledgement is the envelope applications use for the acknowledgement of
// a received packet: {"result": "<base64>"} on success, {"error": "..."} on failure.
type Acknowledgement struct {
	Result []byte `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func NewResultAcknowledgement(result []byte) Acknowledgement {
	return Acknowledgement{Result: result}
}

// NewErrorAcknowledgement returns an error acknowledgement carrying only the
// ABCI code and codespace of err. The full error message is not included
// since it may be nondeterministic.
func NewErrorAcknowledgement(err error) Acknowledgement {
	codespace, code, _ := sdkerrors.ABCIInfo(err, false)
	return Acknowledgement{Error: fmt.Sprintf("ABCI code: %d (%s): %s", code, codespace, "error handling packet: see events for details")}
}

// ValidateBasic requires exactly one of Result and Error to be set.
func (ack Acknowledgement) ValidateBasic() error {
	switch {
	case len(ack.Result) != 0 && ack.Error != "":
		return sdkerrors.Wrap(ErrInvalidAcknowledgement, "acknowledgement cannot be both a result and an error")
	case len(ack.Result) == 0 && ack.Error == "":
		return sdkerrors.Wrap(ErrInvalidAcknowledgement, "acknowledgement must be a result or an error")
	}
	return nil
}

// Success reports whether the acknowledgement is a result.
func (ack Acknowledgement) Success() bool {
	return ack.Error == ""
}

// Acknowledgement returns the sorted JSON encoding written to the store.
func (ack Acknowledgement) Acknowledgement() []byte {
	bz, err := json.Marshal(ack)
	if err != nil {
		panic(err)
	}
	return sdk.MustSortJSON(bz)
}

// UnmarshalAcknowledgement decodes the JSON envelope.
func UnmarshalAcknowledgement(bz []byte) (Acknowledgement, error) {
	var ack Acknowledgement
	if err := json.Unmarshal(bz, &ack); err != nil {
		return Acknowledgement{}, sdkerrors.Wrap(ErrInvalidAcknowledgement, err.Error())
	}
	if err := ack.ValidateBasic(); err != nil {
		return Acknowledgement{}, err
	}
	return ack, nil
}

// AcknowledgementI is what a module returns for a received packet. A nil
// AcknowledgementI means the acknowledgement is written asynchronously.
type AcknowledgementI interface {
	Success() bool
	Acknowledgement() []byte
}

// IsNilAcknowledgement reports whether ack is nil, including typed nil pointers.
func IsNilAcknowledgement(ack AcknowledgementI) bool {
	if ack == nil {
		return true
	}
	v := reflect.ValueOf(ack)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
