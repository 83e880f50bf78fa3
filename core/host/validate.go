package host

import (
	"regexp"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// DefaultMaxCharacterLength is the default upper bound for identifiers.
const DefaultMaxCharacterLength = 64

// DefaultMaxPortCharacterLength is the upper bound for port identifiers.
const DefaultMaxPortCharacterLength = 128

// IsValidID reports whether id only uses the ICS-24 identifier alphabet:
// alphanumerics and . _ + - # [ ] < >
var IsValidID = regexp.MustCompile(`^[a-zA-Z0-9\.\_\+\-\#\[\]\<\>]+$`).MatchString

// ValidateFn validates an identifier.
type ValidateFn func(string) error

func defaultIdentifierValidator(id string, min, max int) error {
	if strings.TrimSpace(id) == "" {
		return sdkerrors.Wrap(ErrInvalidID, "identifier cannot be blank")
	}
	// valid id must not contain path separators
	if strings.Contains(id, "/") {
		return sdkerrors.Wrapf(ErrInvalidID, "identifier %s cannot contain separator '/'", id)
	}
	if len(id) < min || len(id) > max {
		return sdkerrors.Wrapf(ErrInvalidID, "identifier %s has invalid length: %d, must be between %d-%d characters", id, len(id), min, max)
	}
	if !IsValidID(id) {
		return sdkerrors.Wrapf(ErrInvalidID, "identifier %s must contain only alphanumeric or the following characters: '.', '_', '+', '-', '#', '[', ']', '<', '>'", id)
	}
	return nil
}

// ClientIdentifierValidator validates a client identifier (9-64 characters).
func ClientIdentifierValidator(id string) error {
	return defaultIdentifierValidator(id, 9, DefaultMaxCharacterLength)
}

// ConnectionIdentifierValidator validates a connection identifier (10-64 characters).
func ConnectionIdentifierValidator(id string) error {
	return defaultIdentifierValidator(id, 10, DefaultMaxCharacterLength)
}

// ChannelIdentifierValidator validates a channel identifier (8-64 characters).
func ChannelIdentifierValidator(id string) error {
	return defaultIdentifierValidator(id, 8, DefaultMaxCharacterLength)
}

// PortIdentifierValidator validates a port identifier (2-128 characters).
func PortIdentifierValidator(id string) error {
	return defaultIdentifierValidator(id, 2, DefaultMaxPortCharacterLength)
}

// ClientTypeValidator validates a client type. The type prefixes generated
// client identifiers, so it must leave room for the "-{sequence}" suffix.
func ClientTypeValidator(clientType string) error {
	if strings.TrimSpace(clientType) == "" {
		return sdkerrors.Wrap(ErrInvalidID, "client type cannot be blank")
	}
	if len(clientType) > DefaultMaxCharacterLength-2 {
		return sdkerrors.Wrapf(ErrInvalidID, "client type %s is too long", clientType)
	}
	if strings.HasSuffix(clientType, "-") || !IsValidID(clientType) {
		return sdkerrors.Wrapf(ErrInvalidID, "invalid client type %s", clientType)
	}
	return nil
}

// PathValidator checks that every segment of a "/" separated path is a valid identifier.
func PathValidator(path string) error {
	segments := strings.Split(path, "/")
	if len(segments) == 0 || segments[0] == "" {
		return sdkerrors.Wrapf(ErrInvalidPath, "path %s doesn't contain any separator '/'", path)
	}
	for _, s := range segments {
		if err := defaultIdentifierValidator(s, 1, DefaultMaxPortCharacterLength); err != nil {
			return sdkerrors.Wrapf(ErrInvalidPath, "path %s: %v", path, err)
		}
	}
	return nil
}

// ValidateSigner rejects a blank datagram signer.
func ValidateSigner(signer string) error {
	if strings.TrimSpace(signer) == "" {
		return sdkerrors.Wrap(sdkerrors.ErrInvalidAddress, "signer cannot be blank")
	}
	return nil
}
