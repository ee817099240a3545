package channel_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"passlink/internal/crypto"
	"passlink/internal/domain"
	"passlink/internal/protocol/channel"
)

const (
	clientPublicKey = "UIIPObeoya1G8g1M5omgyoPR/j1mR1HlYHu0wHCgMhA="
	serverSecretKey = "tbPQcghxfOgbmsnEqG2qMIj1W2+nh+lOJcNsHncaz1Q="
	testNonce       = "zBKdvTjL5bgWaKMCTut/8soM/uoMrFoZ"

	// Sealed form of indentedAction under the keys above and testNonce.
	indentedAction   = "{\n    \"action\": \"test-action\"\n}\n"
	indentedSealed   = "+zjtntnk4rGWSl/Ph7Vqip/swvgeupk4lNgHEm2OO3ujNr0OMz6eQtGwjtsj+/rP"
	compactAction    = `{"action":"test-action"}`
	compactSealedB64 = "tAdkylBEkyhz5DIG36WczZ/Eg7tK89Q31ZZMCWbfdXbgIawUKH3dXA=="
)

// serverSession returns a session holding the fixed server secret, already
// handshaken with the fixed client key.
func serverSession(t *testing.T) *channel.Session {
	t.Helper()
	sk, err := crypto.DecodeSecretKey(serverSecretKey)
	if err != nil {
		t.Fatalf("DecodeSecretKey: %v", err)
	}
	kp, err := crypto.KeyPairFromSecret(sk)
	if err != nil {
		t.Fatalf("KeyPairFromSecret: %v", err)
	}
	s := channel.NewWithKeyPair("testClient", kp)
	if _, err := s.Handshake(clientPublicKey, testNonce); err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	return s
}

// pair returns a host session and a client session that completed a handshake.
func pair(t *testing.T, nonce string) (host, client *channel.Session) {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	client = channel.NewWithKeyPair("client", kp)
	host = channel.New("client")

	hostPub, err := host.Handshake(channel.EncodeKey(kp.Public.Slice()), nonce)
	if err != nil {
		t.Fatalf("host Handshake: %v", err)
	}
	if _, err := client.Handshake(hostPub, nonce); err != nil {
		t.Fatalf("client Handshake: %v", err)
	}
	return host, client
}

func TestHandshake_ReturnsOwnKey(t *testing.T) {
	s := channel.New("testClient")
	if s.Established() {
		t.Fatal("established before handshake")
	}
	pub, err := s.Handshake(clientPublicKey, testNonce)
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if pub == clientPublicKey {
		t.Fatal("host returned the client's key")
	}
	if _, err := crypto.DecodeKey(pub); err != nil {
		t.Fatalf("returned key does not decode: %v", err)
	}
	if !s.Established() {
		t.Fatal("not established after handshake")
	}
	if s.PublicKey() != pub {
		t.Fatal("PublicKey differs from handshake result")
	}
	if s.Nonce() != testNonce {
		t.Fatalf("nonce %q, want %q", s.Nonce(), testNonce)
	}
}

func TestHandshake_InvalidInputs(t *testing.T) {
	s := channel.New("testClient")
	cases := []struct{ key, nonce string }{
		{"", testNonce},
		{"not-base64", testNonce},
		{crypto.B64(make([]byte, 31)), testNonce},
		{clientPublicKey, ""},
		{clientPublicKey, crypto.B64(make([]byte, 16))},
	}
	for _, tc := range cases {
		if _, err := s.Handshake(tc.key, tc.nonce); !errors.Is(err, channel.ErrInvalidKey) {
			t.Fatalf("Handshake(%q, %q): got %v, want ErrInvalidKey", tc.key, tc.nonce, err)
		}
	}
	// A failed handshake leaves the session usable for a retry.
	if _, err := s.Handshake(clientPublicKey, testNonce); err != nil {
		t.Fatalf("retry Handshake: %v", err)
	}
}

func TestHandshake_PeerKeyIsFixed(t *testing.T) {
	s := channel.New("testClient")
	first, err := s.Handshake(clientPublicKey, testNonce)
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	again, err := s.Handshake(clientPublicKey, testNonce)
	if err != nil {
		t.Fatalf("repeat Handshake: %v", err)
	}
	if again != first {
		t.Fatal("keypair regenerated on repeat handshake")
	}

	other, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if _, err := s.Handshake(channel.EncodeKey(other.Public.Slice()), testNonce); !errors.Is(err, channel.ErrPeerKeyChanged) {
		t.Fatalf("got %v, want ErrPeerKeyChanged", err)
	}
}

func TestEncrypt_KnownVectors(t *testing.T) {
	s := serverSession(t)
	got, err := s.Encrypt([]byte(indentedAction), testNonce)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if got != indentedSealed {
		t.Fatalf("got %q, want %q", got, indentedSealed)
	}

	s = serverSession(t)
	got, err = s.Encrypt([]byte(compactAction), testNonce)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if got != compactSealedB64 {
		t.Fatalf("got %q, want %q", got, compactSealedB64)
	}
}

func TestDecrypt_KnownVector(t *testing.T) {
	s := serverSession(t)
	pt, err := s.Decrypt(indentedSealed, testNonce)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	var msg struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(pt, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Action != "test-action" {
		t.Fatalf("action %q, want %q", msg.Action, "test-action")
	}
	if want := "zRKdvTjL5bgWaKMCTut/8soM/uoMrFoZ"; s.Nonce() != want {
		t.Fatalf("nonce after decrypt %q, want %q", s.Nonce(), want)
	}
}

func TestRoundTrip_LockStepNonces(t *testing.T) {
	host, client := pair(t, testNonce)

	request := []byte(`{"action":"get-logins","url":"https://github.com"}`)
	ct, err := client.Encrypt(request, testNonce)
	if err != nil {
		t.Fatalf("client Encrypt: %v", err)
	}
	pt, err := host.Decrypt(ct, testNonce)
	if err != nil {
		t.Fatalf("host Decrypt: %v", err)
	}
	if string(pt) != string(request) {
		t.Fatalf("got %q, want %q", pt, request)
	}

	replyNonce := host.Nonce()
	if want, _ := channel.IncrementNonce(testNonce); replyNonce != want {
		t.Fatalf("reply nonce %q, want %q", replyNonce, want)
	}
	if client.Nonce() != replyNonce {
		t.Fatalf("client nonce %q out of step with host %q", client.Nonce(), replyNonce)
	}

	reply, err := host.Encrypt([]byte(`{"count":0}`), replyNonce)
	if err != nil {
		t.Fatalf("host Encrypt: %v", err)
	}
	got, err := client.Decrypt(reply, replyNonce)
	if err != nil {
		t.Fatalf("client Decrypt: %v", err)
	}
	if string(got) != `{"count":0}` {
		t.Fatalf("got %q", got)
	}
}

func TestDecrypt_Failures(t *testing.T) {
	host, client := pair(t, testNonce)
	ct, err := client.Encrypt([]byte("secret"), testNonce)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	other, _ := channel.IncrementNonce(testNonce)
	if _, err := host.Decrypt(ct, other); !errors.Is(err, channel.ErrDecryptionFailed) {
		t.Fatalf("wrong nonce: got %v", err)
	}

	eve := channel.New("eve")
	if _, err := eve.Handshake(channel.EncodeKey(mustPub(t, client)), testNonce); err != nil {
		t.Fatalf("eve Handshake: %v", err)
	}
	if _, err := eve.Decrypt(ct, testNonce); !errors.Is(err, channel.ErrDecryptionFailed) {
		t.Fatalf("wrong key: got %v", err)
	}

	raw, _ := crypto.DecodeKey(clientPublicKey) // any 32 bytes will do as garbage
	if _, err := host.Decrypt(crypto.B64(raw[:]), testNonce); !errors.Is(err, channel.ErrDecryptionFailed) {
		t.Fatalf("corrupted ciphertext: got %v", err)
	}
	if _, err := host.Decrypt("***", testNonce); !errors.Is(err, channel.ErrDecryptionFailed) {
		t.Fatalf("malformed ciphertext: got %v", err)
	}
	if _, err := host.Decrypt(ct, "short"); !errors.Is(err, channel.ErrDecryptionFailed) {
		t.Fatalf("malformed nonce: got %v", err)
	}

	if _, err := host.Decrypt(ct, testNonce); err != nil {
		t.Fatalf("genuine message rejected after failures: %v", err)
	}
	_, err = host.Decrypt(ct, testNonce)
	if !errors.Is(err, channel.ErrDecryptionFailed) || !errors.Is(err, channel.ErrNonceReused) {
		t.Fatalf("replay: got %v", err)
	}
}

func TestEncrypt_Deterministic(t *testing.T) {
	a, b := serverSession(t), serverSession(t)
	x, err := a.Encrypt([]byte("payload"), testNonce)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	y, err := b.Encrypt([]byte("payload"), testNonce)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if x != y {
		t.Fatalf("outputs differ: %q vs %q", x, y)
	}
}

func TestEncrypt_RefusesReusedAndZeroNonce(t *testing.T) {
	s := serverSession(t)
	if _, err := s.Encrypt([]byte("one"), testNonce); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := s.Encrypt([]byte("two"), testNonce); !errors.Is(err, channel.ErrNonceReused) {
		t.Fatalf("reuse: got %v, want ErrNonceReused", err)
	}
	zero := crypto.EncodeNonce(domain.Nonce{})
	if _, err := s.Encrypt([]byte("three"), zero); !errors.Is(err, channel.ErrNonceReused) {
		t.Fatalf("zero nonce: got %v, want ErrNonceReused", err)
	}
	if _, err := s.Decrypt(indentedSealed, zero); !errors.Is(err, channel.ErrDecryptionFailed) {
		t.Fatalf("zero nonce decrypt: got %v", err)
	}
}

func TestSession_StateErrors(t *testing.T) {
	s := channel.New("c")
	if _, err := s.Encrypt([]byte("x"), testNonce); !errors.Is(err, channel.ErrNoSession) {
		t.Fatalf("before handshake: got %v, want ErrNoSession", err)
	}
	if _, err := s.Decrypt(indentedSealed, testNonce); !errors.Is(err, channel.ErrNoSession) {
		t.Fatalf("before handshake: got %v, want ErrNoSession", err)
	}

	s = serverSession(t)
	s.Close()
	if s.Established() {
		t.Fatal("established after Close")
	}
	if _, err := s.Encrypt([]byte("x"), testNonce); !errors.Is(err, channel.ErrSessionClosed) {
		t.Fatalf("after close: got %v, want ErrSessionClosed", err)
	}
	if _, err := s.Handshake(clientPublicKey, testNonce); !errors.Is(err, channel.ErrSessionClosed) {
		t.Fatalf("after close: got %v, want ErrSessionClosed", err)
	}
}

func TestSession_ConcurrentEncrypt(t *testing.T) {
	s := serverSession(t)
	start, _ := crypto.DecodeNonce(testNonce)

	const workers = 16
	nonces := make([]string, workers)
	n := start
	for i := range nonces {
		n = crypto.Increment(n)
		nonces[i] = crypto.EncodeNonce(n)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Encrypt([]byte(fmt.Sprintf("msg-%d", i)), nonces[i]); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Encrypt: %v", err)
	}
}

func mustPub(t *testing.T, s *channel.Session) []byte {
	t.Helper()
	pk, err := crypto.DecodeKey(s.PublicKey())
	if err != nil {
		t.Fatalf("DecodeKey: %v", err)
	}
	return pk.Slice()
}
