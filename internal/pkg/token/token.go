package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewSessionID generates a cryptographically random 64-character hex session identifier.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
