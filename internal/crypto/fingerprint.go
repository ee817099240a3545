package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"passlink/internal/domain"
)

// Fingerprint identifies a public key in logs without printing the key.
// It is the first 8 bytes of SHA-256, hex encoded.
func Fingerprint(pub domain.PublicKey) string {
	sum := sha256.Sum256(pub[:])
	return hex.EncodeToString(sum[:8])
}
