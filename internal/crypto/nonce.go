package crypto

import "passlink/internal/domain"

// Increment adds one to n, read as a little-endian integer.
// The carry ripples upward; 2^192-1 wraps to zero.
func Increment(n domain.Nonce) domain.Nonce {
	for i := range n {
		n[i]++
		if n[i] != 0 {
			break
		}
	}
	return n
}

// IncrementNonce is Increment on the base64 wire form.
func IncrementNonce(nonce string) (string, error) {
	n, err := DecodeNonce(nonce)
	if err != nil {
		return "", err
	}
	return EncodeNonce(Increment(n)), nil
}
