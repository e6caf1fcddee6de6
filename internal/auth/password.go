package auth

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/dukerupert/shopwrench"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", shopwrench.Invalid("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword compares a password with a stored hash. Returns
// EUNAUTHORIZED on mismatch so handlers can map it without inspecting
// bcrypt internals.
func VerifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return shopwrench.Unauthorized("invalid credentials")
	}
	return nil
}

// GenerateToken returns a cryptographically random URL-safe token for
// session identifiers.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
