package channel

import (
	"encoding/base64"
	"errors"

	"passlink/internal/crypto"
)

var errShortCiphertext = errors.New("ciphertext shorter than box overhead")

func decodeCiphertext(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) < crypto.Overhead {
		return nil, errShortCiphertext
	}
	return b, nil
}

// EncodeKey is the base64 form used for all key and nonce material on the wire.
func EncodeKey(raw []byte) string { return crypto.EncodeKey(raw) }

// IncrementNonce adds one to a base64 nonce, little-endian with carry.
func IncrementNonce(nonce string) (string, error) { return crypto.IncrementNonce(nonce) }
