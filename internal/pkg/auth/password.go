package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes. Tests lower it.
var BcryptCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

var (
	placeholderOnce sync.Once
	placeholderHash []byte
)

// HashPassword returns the bcrypt hash of password. Inputs longer than
// MaxPasswordBytes are rejected instead of being truncated.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", bcrypt.ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hashedPassword
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// SpendCompare runs one comparison against a placeholder hash, so a login for
// an unknown email costs as much as one with a wrong password.
func SpendCompare(password string) {
	placeholderOnce.Do(func() {
		placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("nhance-placeholder"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(placeholderHash, []byte(password))
}
