package channel

import (
	"errors"
	"fmt"
	"sync"

	"passlink/internal/crypto"
	"passlink/internal/domain"
	"passlink/internal/util/memzero"
)

// maxNonces bounds the replay set per direction; past it the client must rotate keys.
const maxNonces = 1 << 16

var (
	ErrInvalidKey       = errors.New("channel: invalid key or nonce encoding")
	ErrDecryptionFailed = errors.New("channel: decryption failed")
	ErrNoSession        = errors.New("channel: handshake not completed")
	ErrNonceReused      = errors.New("channel: nonce is zero or already used")
	ErrPeerKeyChanged   = errors.New("channel: peer key is fixed for the session")
	ErrSessionClosed    = errors.New("channel: session closed")
	ErrExhausted        = errors.New("channel: nonce budget exhausted; rotate keys")
)

// Session is the key and nonce state for one connected client.
type Session struct {
	mu sync.Mutex

	clientID string
	keys     *domain.KeyPair
	peer     *domain.PublicKey
	shared   *[32]byte
	nonce    domain.Nonce
	closed   bool

	sealed map[domain.Nonce]struct{}
	opened map[domain.Nonce]struct{}
}

// New returns a session that generates its keypair on first handshake.
func New(clientID string) *Session {
	return &Session{
		clientID: clientID,
		sealed:   make(map[domain.Nonce]struct{}),
		opened:   make(map[domain.Nonce]struct{}),
	}
}

// NewWithKeyPair returns a session bound to a known keypair.
func NewWithKeyPair(clientID string, kp domain.KeyPair) *Session {
	s := New(clientID)
	s.keys = &kp
	return s
}

// ClientID returns the peer-supplied identifier.
func (s *Session) ClientID() string { return s.clientID }

// Handshake records the peer's public key and starting nonce and returns
// this side's public key, generating a keypair if the session has none.
func (s *Session) Handshake(peerPublicKey, nonce string) (string, error) {
	pk, err := crypto.DecodeKey(peerPublicKey)
	if err != nil {
		return "", ErrInvalidKey
	}
	n, err := crypto.DecodeNonce(nonce)
	if err != nil {
		return "", ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSessionClosed
	}
	if s.peer != nil && *s.peer != pk {
		return "", ErrPeerKeyChanged
	}
	if s.keys == nil {
		kp, err := crypto.GenerateKeyPair()
		if err != nil {
			return "", fmt.Errorf("generating session keypair: %w", err)
		}
		s.keys = &kp
	}
	if s.shared == nil {
		s.shared = crypto.SharedKey(pk, s.keys.Secret)
	}
	s.peer = &pk
	s.nonce = n
	return crypto.EncodeKey(s.keys.Public.Slice()), nil
}

// Established reports whether a handshake has completed.
func (s *Session) Established() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shared != nil && !s.closed
}

// PublicKey returns this side's public key, or "" before the keypair exists.
func (s *Session) PublicKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys == nil {
		return ""
	}
	return crypto.EncodeKey(s.keys.Public.Slice())
}

// PeerFingerprint returns a short fingerprint of the peer key for logging.
func (s *Session) PeerFingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer == nil {
		return ""
	}
	return crypto.Fingerprint(*s.peer)
}

// Nonce returns the next nonce this session expects to use.
func (s *Session) Nonce() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return crypto.EncodeNonce(s.nonce)
}

// IncrementNonce returns nonce+1. It does not change session state.
func (s *Session) IncrementNonce(nonce string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return crypto.IncrementNonce(nonce)
}

// Encrypt seals plaintext for the peer under nonce and returns it base64 encoded.
// The output is deterministic for a fixed keypair, peer key, nonce and plaintext.
func (s *Session) Encrypt(plaintext []byte, nonce string) (string, error) {
	n, err := crypto.DecodeNonce(nonce)
	if err != nil {
		return "", ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return "", err
	}
	if err := claim(s.sealed, n); err != nil {
		return "", err
	}
	out := crypto.Seal(s.shared, n, plaintext)
	s.nonce = crypto.Increment(n)
	return crypto.B64(out), nil
}

// Decrypt opens a base64 ciphertext from the peer under nonce.
func (s *Session) Decrypt(ciphertext, nonce string) ([]byte, error) {
	n, err := crypto.DecodeNonce(nonce)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	sealed, err := decodeCiphertext(ciphertext)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return nil, err
	}
	if n.IsZero() {
		return nil, ErrDecryptionFailed
	}
	if _, seen := s.opened[n]; seen {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrNonceReused)
	}
	pt, err := crypto.Open(s.shared, n, sealed)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if err := claim(s.opened, n); err != nil {
		return nil, err
	}
	s.nonce = crypto.Increment(n)
	return pt, nil
}

// Close wipes the secret material. The session cannot be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.keys != nil {
		memzero.Zero(s.keys.Secret[:])
	}
	if s.shared != nil {
		memzero.Zero(s.shared[:])
	}
	s.closed = true
}

func (s *Session) usable() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.shared == nil {
		return ErrNoSession
	}
	return nil
}

// claim records n in used, refusing the zero nonce and repeats.
func claim(used map[domain.Nonce]struct{}, n domain.Nonce) error {
	if n.IsZero() {
		return ErrNonceReused
	}
	if _, ok := used[n]; ok {
		return ErrNonceReused
	}
	if len(used) >= maxNonces {
		return ErrExhausted
	}
	used[n] = struct{}{}
	return nil
}
