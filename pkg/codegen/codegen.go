package codegen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Alphabet excludes visually confusable characters (0/O, 1/I) so codes can be
// read back over the phone or typed from a printed card.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const DefaultCodeLength = 8

// Generate produces a random code of the given length drawn from Alphabet.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i := range b {
		b[i] = Alphabet[int(b[i])%len(Alphabet)]
	}
	return string(b), nil
}

// GenerateToken produces a random invite token (24 bytes = 48 hex chars).
func GenerateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
