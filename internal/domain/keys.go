package domain

const (
	// KeySize is the length of Curve25519 public and secret keys.
	KeySize = 32
	// NonceSize is the length of a box nonce.
	NonceSize = 24
)

// ------------- Curve25519 -------------

type PublicKey [KeySize]byte
type SecretKey [KeySize]byte

func (k PublicKey) Slice() []byte { return k[:] }
func (k SecretKey) Slice() []byte { return k[:] }

// MustPublicKey copies b into a PublicKey. It panics if len(b) != KeySize.
func MustPublicKey(b []byte) PublicKey {
	if len(b) != KeySize {
		panic("domain: public key must be 32 bytes")
	}
	var k PublicKey
	copy(k[:], b)
	return k
}

// MustSecretKey copies b into a SecretKey. It panics if len(b) != KeySize.
func MustSecretKey(b []byte) SecretKey {
	if len(b) != KeySize {
		panic("domain: secret key must be 32 bytes")
	}
	var k SecretKey
	copy(k[:], b)
	return k
}

// KeyPair is an ephemeral box keypair. It is never persisted.
type KeyPair struct {
	Public PublicKey
	Secret SecretKey
}

// ------------- Nonce -------------

// Nonce is a 24-byte box nonce, read as a little-endian unsigned integer.
type Nonce [NonceSize]byte

// IsZero reports whether every byte of n is zero.
func (n Nonce) IsZero() bool {
	return n == Nonce{}
}
