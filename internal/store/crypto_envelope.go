package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"passlink/internal/util/memzero"
)

// The current version of the sealed database format.
const envelopeVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// file has been modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted database")

// sealedFile is the on-disk JSON structure holding the ciphertext and KDF parameters.
type sealedFile struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// kdfParams are the scrypt cost parameters.
type kdfParams struct{ N, R, P int }

var defaultKDF = kdfParams{N: 1 << 15, R: 8, P: 1}

// seal derives a key from passphrase and encrypts raw. The salt is the AEAD
// additional data, so swapping salts between files fails to open.
func seal(passphrase string, raw []byte, kdf kdfParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], kdf.N, kdf.R, kdf.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero; every save draws a fresh salt and key
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(sealedFile{
		V:      envelopeVersion,
		Salt:   salt[:],
		N:      kdf.N,
		R:      kdf.R,
		P:      kdf.P,
		Cipher: ct,
	})
}

// open reverses seal.
func open(passphrase string, b []byte) ([]byte, error) {
	var f sealedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if f.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", f.V)
	}

	key, err := scrypt.Key([]byte(passphrase), f.Salt, f.N, f.R, f.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], f.Cipher, f.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
