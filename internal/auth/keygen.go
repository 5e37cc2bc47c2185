package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// APIKeyBytes is the entropy of an issued API key (512 bits).
	APIKeyBytes = 64
	// SessionTokenBytes is the entropy of a session cookie token (256 bits).
	SessionTokenBytes = 32
)

// GenerateAPIKey returns a new hex-encoded API key.
func GenerateAPIKey() (string, error) {
	return randomHex(APIKeyBytes)
}

// GenerateSessionToken returns a new hex-encoded session token.
func GenerateSessionToken() (string, error) {
	return randomHex(SessionTokenBytes)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
