// Package auth owns password hashing and session-token generation.
// Passwords are never stored or compared in plaintext.
package auth

import (
	"encoding/base64"
	"errors"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost 12 is a deliberate step above the library default.
const bcryptCost = 12

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the
// stored bcrypt hash. An empty hash (no password ever set) never
// matches.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewSessionString generates the opaque bearer token returned on login:
// 32 bytes from the OS CSPRNG, base64url-encoded (43 characters, no
// padding).
func NewSessionString() (string, error) {
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return "", errors.New("auth: random source unavailable")
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}
