package crypto_test

import (
	"bytes"
	"errors"
	"testing"

	"passlink/internal/crypto"
	"passlink/internal/domain"
)

const (
	clientPublicKey = "UIIPObeoya1G8g1M5omgyoPR/j1mR1HlYHu0wHCgMhA="
	serverSecretKey = "tbPQcghxfOgbmsnEqG2qMIj1W2+nh+lOJcNsHncaz1Q="
	testNonce       = "zBKdvTjL5bgWaKMCTut/8soM/uoMrFoZ"
)

func mustShared(t *testing.T, pub, sec string) *[32]byte {
	t.Helper()
	pk, err := crypto.DecodeKey(pub)
	if err != nil {
		t.Fatalf("DecodeKey: %v", err)
	}
	sk, err := crypto.DecodeSecretKey(sec)
	if err != nil {
		t.Fatalf("DecodeSecretKey: %v", err)
	}
	return crypto.SharedKey(pk, sk)
}

func TestEncodeKey_KnownVector(t *testing.T) {
	raw := make([]byte, domain.KeySize)
	for i := range raw {
		raw[i] = byte(i)
	}
	if got, want := crypto.EncodeKey(raw), "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeKey_RejectsWrongLength(t *testing.T) {
	if _, err := crypto.DecodeKey(crypto.B64(make([]byte, 31))); !errors.Is(err, crypto.ErrInvalidKey) {
		t.Fatalf("got %v, want ErrInvalidKey", err)
	}
	if _, err := crypto.DecodeKey("%%%"); !errors.Is(err, crypto.ErrInvalidKey) {
		t.Fatalf("got %v, want ErrInvalidKey", err)
	}
}

func TestSeal_KnownVector(t *testing.T) {
	shared := mustShared(t, clientPublicKey, serverSecretKey)
	nonce, err := crypto.DecodeNonce(testNonce)
	if err != nil {
		t.Fatalf("DecodeNonce: %v", err)
	}

	got := crypto.B64(crypto.Seal(shared, nonce, []byte(`{"action":"test-action"}`)))
	if want := "tAdkylBEkyhz5DIG36WczZ/Eg7tK89Q31ZZMCWbfdXbgIawUKH3dXA=="; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestOpen_RoundTripAndTamper(t *testing.T) {
	a, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	b, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	nonce := domain.Nonce{7}
	msg := []byte("hello extension")

	sealed := crypto.Seal(crypto.SharedKey(b.Public, a.Secret), nonce, msg)
	if len(sealed) != len(msg)+crypto.Overhead {
		t.Fatalf("sealed length %d, want %d", len(sealed), len(msg)+crypto.Overhead)
	}

	pt, err := crypto.Open(crypto.SharedKey(a.Public, b.Secret), nonce, sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(pt, msg) {
		t.Fatalf("got %q, want %q", pt, msg)
	}

	sealed[len(sealed)-1] ^= 0x01
	if _, err := crypto.Open(crypto.SharedKey(a.Public, b.Secret), nonce, sealed); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
	if _, err := crypto.Open(crypto.SharedKey(a.Public, b.Secret), nonce, sealed[:3]); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}

func TestKeyPairFromSecret_MatchesGenerated(t *testing.T) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	got, err := crypto.KeyPairFromSecret(kp.Secret)
	if err != nil {
		t.Fatalf("KeyPairFromSecret: %v", err)
	}
	if got.Public != kp.Public {
		t.Fatalf("public key mismatch")
	}
}
