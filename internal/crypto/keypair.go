package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"passlink/internal/domain"
)

// GenerateKeyPair returns a fresh box keypair.
func GenerateKeyPair() (domain.KeyPair, error) {
	pub, sec, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return domain.KeyPair{}, err
	}
	return domain.KeyPair{Public: *pub, Secret: *sec}, nil
}

// KeyPairFromSecret rebuilds a keypair from a known secret key.
func KeyPairFromSecret(secret domain.SecretKey) (domain.KeyPair, error) {
	pb, err := curve25519.X25519(secret.Slice(), curve25519.Basepoint)
	if err != nil {
		return domain.KeyPair{}, err
	}
	return domain.KeyPair{Public: domain.MustPublicKey(pb), Secret: secret}, nil
}
