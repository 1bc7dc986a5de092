package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	RefreshTokenBytes = 32
	ResetTokenBytes   = 32
)

// NewRefreshToken returns the opaque value stored in users.refresh_token.
func NewRefreshToken() (string, error) {
	return randomHex(RefreshTokenBytes, "refresh token")
}

// NewResetToken returns the value mailed in a password-reset link.
func NewResetToken() (string, error) {
	return randomHex(ResetTokenBytes, "reset token")
}

func randomHex(n int, what string) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate %s: %w", what, err)
	}
	return hex.EncodeToString(buf), nil
}
