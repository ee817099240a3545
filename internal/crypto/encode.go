package crypto

import (
	"encoding/base64"
	"errors"

	"passlink/internal/domain"
)

var (
	// ErrInvalidKey is returned for key material that is not base64 or has the wrong length.
	ErrInvalidKey = errors.New("invalid key encoding")
	// ErrInvalidNonce is returned for nonces that are not base64 or have the wrong length.
	ErrInvalidNonce = errors.New("invalid nonce encoding")
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// EncodeKey is the wire form of keys and nonces.
func EncodeKey(raw []byte) string { return B64(raw) }

// DecodeKey parses a base64 public key.
func DecodeKey(s string) (domain.PublicKey, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b) != domain.KeySize {
		return domain.PublicKey{}, ErrInvalidKey
	}
	return domain.MustPublicKey(b), nil
}

// DecodeSecretKey parses a base64 secret key.
func DecodeSecretKey(s string) (domain.SecretKey, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b) != domain.KeySize {
		return domain.SecretKey{}, ErrInvalidKey
	}
	return domain.MustSecretKey(b), nil
}

// DecodeNonce parses a base64 nonce.
func DecodeNonce(s string) (domain.Nonce, error) {
	var n domain.Nonce
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b) != domain.NonceSize {
		return n, ErrInvalidNonce
	}
	copy(n[:], b)
	return n, nil
}

// EncodeNonce returns the wire form of n.
func EncodeNonce(n domain.Nonce) string { return B64(n[:]) }
