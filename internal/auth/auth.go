// Package auth handles admin credentials and bearer sessions.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Errors for authentication failures.
var (
	// ErrInvalidCredentials indicates a bad email/password pair.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidSession indicates a missing, unknown, or expired session token.
	ErrInvalidSession = errors.New("auth: invalid session")
)

// HashToken computes the SHA-256 hash of a token for storage lookup.
// Applied to both session tokens and report access tokens.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// GenerateToken returns a new opaque credential: 32 random bytes, hex-encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword computes a bcrypt hash for an admin password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a password against its bcrypt hash.
// Returns nil on match.
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
