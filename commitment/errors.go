package commitment

import (
	"errors"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const codespace = "commitment"

var (
	// ErrVerificationFailure is the only error returned by proof verification.
	// Malformed and mismatching proofs carry the same message.
	ErrVerificationFailure = sdkerrors.Register(codespace, 2, "commitment proof verification failed")
	ErrInvalidPrefix       = sdkerrors.Register(codespace, 3, "invalid commitment prefix")
	ErrInvalidProof        = sdkerrors.Register(codespace, 4, "invalid commitment proof")
	ErrKeyNotFound         = sdkerrors.Register(codespace, 5, "key not found in commitment tree")
	ErrKeyExists           = sdkerrors.Register(codespace, 6, "key exists in commitment tree")
)

// verificationError is a rejected proof. Its message is always the one of
// ErrVerificationFailure; the reason is only available through Reason.
type verificationError struct {
	reason error
}

func rejected(reason error) error {
	if reason == nil {
		return nil
	}
	return &verificationError{reason: reason}
}

func (e *verificationError) Error() string {
	return ErrVerificationFailure.Error()
}

func (e *verificationError) Unwrap() error {
	return ErrVerificationFailure
}

// Reason returns why a proof was rejected, or nil when err is not a rejected
// proof. It is meant for logs, never for the datagram result.
func Reason(err error) error {
	var ve *verificationError
	if errors.As(err, &ve) {
		return ve.reason
	}
	return nil
}
