package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DefaultTokenBytes is the number of random bytes in a session token
const DefaultTokenBytes = 16

//go:generate moq -out token_mock.go . TokenGenerator

// TokenGenerator produces session tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

// HexTokenGenerator generates uniformly random hex tokens.
type HexTokenGenerator struct {
	Bytes int
}

// Generate returns 2*Bytes hex characters read from crypto/rand.
func (g HexTokenGenerator) Generate() (string, error) {
	n := g.Bytes
	if n <= 0 {
		n = DefaultTokenBytes
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
