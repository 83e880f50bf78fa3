package connection

import (
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/hyperledger-labs/yui-ibc-core/codec"
)

const (
	// DefaultIBCVersionIdentifier is the connection version identifier of IBC 1.0.
	DefaultIBCVersionIdentifier = "1"

	FeatureOrderOrdered   = "ORDER_ORDERED"
	FeatureOrderUnordered = "ORDER_UNORDERED"
)

// DefaultIBCVersion supports both ordered and unordered channels.
var DefaultIBCVersion = NewVersion(DefaultIBCVersionIdentifier, []string{FeatureOrderOrdered, FeatureOrderUnordered})

// Version is a connection version identifier and the channel features it allows.
type Version struct {
	Identifier string
	Features   []string
}

func NewVersion(identifier string, features []string) Version {
	return Version{Identifier: identifier, Features: features}
}

// GetCompatibleVersions returns the versions this implementation supports,
// in order of preference.
func GetCompatibleVersions() []Version {
	return []Version{DefaultIBCVersion}
}

func (v Version) Marshal() []byte {
	return codec.NewEncoder().String(1, v.Identifier).Strings(2, v.Features).Encode()
}

func unmarshalVersion(bz []byte) (Version, error) {
	var v Version
	err := codec.DecodeFields(bz, func(f codec.Field) error {
		switch f.Num {
		case 1:
			v.Identifier = f.String()
		case 2:
			v.Features = append(v.Features, f.String())
		}
		return nil
	})
	return v, err
}

// ValidateVersion requires a non-blank identifier and non-blank features.
func ValidateVersion(version Version) error {
	if strings.TrimSpace(version.Identifier) == "" {
		return sdkerrors.Wrap(ErrInvalidVersion, "version identifier cannot be blank")
	}
	for i, feature := range version.Features {
		if strings.TrimSpace(feature) == "" {
			return sdkerrors.Wrapf(ErrInvalidVersion, "feature cannot be blank, index %d", i)
		}
	}
	return nil
}

// VerifyProposedVersion checks that proposed has the identifier of supported
// and only features supported allows.
func (v Version) VerifyProposedVersion(proposed Version) error {
	if proposed.Identifier != v.Identifier {
		return sdkerrors.Wrapf(ErrVersionNegotiationFailed, "proposed version identifier %s does not equal supported version identifier %s", proposed.Identifier, v.Identifier)
	}
	if len(proposed.Features) == 0 {
		return sdkerrors.Wrapf(ErrVersionNegotiationFailed, "proposed version %s has no features", proposed.Identifier)
	}
	for _, feature := range proposed.Features {
		if !contains(feature, v.Features) {
			return sdkerrors.Wrapf(ErrVersionNegotiationFailed, "proposed feature %s is not supported by version %s", feature, v.Identifier)
		}
	}
	return nil
}

// VerifySupportedFeature reports whether version allows feature.
func VerifySupportedFeature(version Version, feature string) bool {
	return contains(feature, version.Features)
}

// IsSupportedVersion reports whether proposed is compatible with one of supported.
func IsSupportedVersion(supported []Version, proposed Version) bool {
	v, found := FindSupportedVersion(proposed, supported)
	return found && v.VerifyProposedVersion(proposed) == nil
}

// FindSupportedVersion returns the version of supported with the identifier of version.
func FindSupportedVersion(version Version, supported []Version) (Version, bool) {
	for _, v := range supported {
		if v.Identifier == version.Identifier {
			return v, true
		}
	}
	return Version{}, false
}

// PickVersion selects the first of the counterparty's offered versions that
// is also supported locally. The offered order wins, so both ends of a
// handshake reach the same choice. Features are intersected, again in the
// offered order, and the intersection must not be empty.
func PickVersion(supported, offered []Version) (Version, error) {
	for _, ov := range offered {
		sv, found := FindSupportedVersion(ov, supported)
		if !found {
			continue
		}
		var features []string
		for _, feature := range ov.Features {
			if contains(feature, sv.Features) && !contains(feature, features) {
				features = append(features, feature)
			}
		}
		if len(features) == 0 {
			continue
		}
		return NewVersion(ov.Identifier, features), nil
	}
	return Version{}, sdkerrors.Wrapf(ErrVersionNegotiationFailed, "failed to find a matching version among %v offered and %v supported", offered, supported)
}

func contains(elem string, set []string) bool {
	for _, e := range set {
		if e == elem {
			return true
		}
	}
	return false
}
