package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/identity/internal/errors"
)

// argon2Hasher implements PasswordHasher using Argon2id.
type argon2Hasher struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordHasher creates a PasswordHasher with the interactive Argon2id policy.
func NewPasswordHasher() (PasswordHasher, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}
	return &argon2Hasher{hasher: hasher}, nil
}

// Hash returns the PHC-encoded Argon2id hash of the password.
func (h *argon2Hasher) Hash(password string) (string, error) {
	hash, err := h.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

// Verify performs a constant-time comparison between a password and its hash.
func (h *argon2Hasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	ok, err := h.hasher.Verify([]byte(password), hash)
	if err != nil {
		return false
	}
	return ok
}
