package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const protocoloPrefix = "EST-"

// generateToken returns a 64-character hex confirmation token backed by 32
// bytes of cryptographically secure randomness. Tokens are generated once at
// internship creation and never change.
func generateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate confirmation token: %w", err)
	}

	return hex.EncodeToString(raw), nil
}

// generateProtocolo returns a human-readable receipt code assigned when a
// confirmation token is consumed: fixed prefix plus 16 uppercase hex chars
// from a cryptographically secure source.
func generateProtocolo() (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate protocol code: %w", err)
	}

	return protocoloPrefix + strings.ToUpper(hex.EncodeToString(raw)), nil
}
