package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Admin password policy. bcrypt ignores input past 72 bytes, so longer
// passwords are refused rather than silently truncated.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

var ErrWeakPassword = errors.New("password does not meet the length policy")

// CheckPassword enforces the length policy on a new password.
func CheckPassword(plain string) error {
	if n := len(plain); n < MinPasswordLen || n > MaxPasswordLen {
		return fmt.Errorf("%w: must be %d to %d bytes", ErrWeakPassword, MinPasswordLen, MaxPasswordLen)
	}
	return nil
}

// HashPassword bcrypts plain at cost, falling back to bcrypt.DefaultCost
// when cost is out of range.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash. An empty hash, as left
// on a disabled account, never matches.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
