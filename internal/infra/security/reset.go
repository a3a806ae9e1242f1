package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ResetTokenGenerator produces opaque password-reset tokens.
type ResetTokenGenerator struct {
	Size int
}

func (g ResetTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = 32
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reset token: entropy read failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
