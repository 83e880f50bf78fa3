package host

import (
	"fmt"
	"strconv"
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const (
	ConnectionPrefix = "connection-"
	ChannelPrefix    = "channel-"
)

// FormatClientIdentifier returns "{client-type}-{sequence}".
func FormatClientIdentifier(clientType string, sequence uint64) string {
	return fmt.Sprintf("%s-%d", clientType, sequence)
}

// ParseClientIdentifier splits a generated client identifier into its client
// type and sequence.
func ParseClientIdentifier(clientID string) (string, uint64, error) {
	i := strings.LastIndex(clientID, "-")
	if i <= 0 || i == len(clientID)-1 {
		return "", 0, sdkerrors.Wrapf(ErrInvalidID, "invalid client identifier %s", clientID)
	}
	seq, err := parseSequence(clientID[i+1:])
	if err != nil {
		return "", 0, sdkerrors.Wrapf(ErrInvalidID, "invalid client identifier %s: %v", clientID, err)
	}
	return clientID[:i], seq, nil
}

func FormatConnectionIdentifier(sequence uint64) string {
	return fmt.Sprintf("%s%d", ConnectionPrefix, sequence)
}

func FormatChannelIdentifier(sequence uint64) string {
	return fmt.Sprintf("%s%d", ChannelPrefix, sequence)
}

// ParseConnectionSequence returns the sequence of a generated connection identifier.
func ParseConnectionSequence(connectionID string) (uint64, error) {
	return parseIdentifier(connectionID, ConnectionPrefix)
}

// ParseChannelSequence returns the sequence of a generated channel identifier.
func ParseChannelSequence(channelID string) (uint64, error) {
	return parseIdentifier(channelID, ChannelPrefix)
}

func parseIdentifier(id, prefix string) (uint64, error) {
	if !strings.HasPrefix(id, prefix) {
		return 0, sdkerrors.Wrapf(ErrInvalidID, "identifier %s doesn't start with %s", id, prefix)
	}
	seq, err := parseSequence(strings.TrimPrefix(id, prefix))
	if err != nil {
		return 0, sdkerrors.Wrapf(ErrInvalidID, "identifier %s: %v", id, err)
	}
	return seq, nil
}

func parseSequence(s string) (uint64, error) {
	// reject leading zeros so every sequence has a single representation
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("sequence %s has leading zeros", s)
	}
	return strconv.ParseUint(s, 10, 64)
}
