package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Generate returns a numeric one-time passcode of the given length.
// Every character is drawn uniformly from 0-9 via crypto/rand; no letters
// or symbols are ever produced. Leading zeros are allowed, so the result
// must be treated as an opaque string, never parsed as an integer.
func Generate(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("otp length must be positive, got %d", length)
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate otp digit: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
