package crypto

import (
	"errors"

	"golang.org/x/crypto/nacl/box"

	"passlink/internal/domain"
)

// Overhead is the number of bytes a sealed message is longer than its plaintext.
const Overhead = box.Overhead

var errOpen = errors.New("box: message authentication failed")

// SharedKey precomputes the box key for (peer public, own secret).
func SharedKey(peer domain.PublicKey, own domain.SecretKey) *[32]byte {
	var shared [32]byte
	pk := [32]byte(peer)
	sk := [32]byte(own)
	box.Precompute(&shared, &pk, &sk)
	return &shared
}

// Seal encrypts and authenticates plaintext under shared and nonce.
// The output is the Poly1305 tag followed by the ciphertext.
func Seal(shared *[32]byte, nonce domain.Nonce, plaintext []byte) []byte {
	n := [24]byte(nonce)
	return box.SealAfterPrecomputation(nil, plaintext, &n, shared)
}

// Open verifies and decrypts a sealed message.
func Open(shared *[32]byte, nonce domain.Nonce, sealed []byte) ([]byte, error) {
	if len(sealed) < Overhead {
		return nil, errOpen
	}
	n := [24]byte(nonce)
	pt, ok := box.OpenAfterPrecomputation(nil, sealed, &n, shared)
	if !ok {
		return nil, errOpen
	}
	return pt, nil
}
