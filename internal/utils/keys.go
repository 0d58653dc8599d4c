package utils

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// DerivedKeyLength is the size of an HMAC-SHA256 key.
	DerivedKeyLength = 32

	purposeSession = "diagnosia-session-jwt-v1"
)

var ErrEmptySecret = errors.New("secret cannot be empty")

// DeriveKey derives a purpose-bound key from secret with HKDF-SHA256.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	key := make([]byte, DerivedKeyLength)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveSessionKey derives the key used to sign session tokens.
func DeriveSessionKey(secret []byte) ([]byte, error) {
	return DeriveKey(secret, purposeSession)
}
