// Package passhash wraps bcrypt hashing and verification of user passwords.
// Hashing embeds a random per-call salt, so two hashes of the same password
// differ; the stored hash is self-contained and safe to persist as-is.
package passhash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by Hash when the plaintext is empty.
var ErrEmptyPassword = errors.New("password must not be empty")

// Hash produces a bcrypt hash of the plaintext password.
func Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
// A non-matching password is not an error: the result is simply false.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
