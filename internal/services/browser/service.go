package browser

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"passlink/internal/crypto"
	"passlink/internal/domain"
	"passlink/internal/protocol/channel"
	"passlink/internal/services/matcher"
)

var (
	// ErrTooManyFailures means a client keeps sending messages that fail to
	// decrypt. The caller should disconnect.
	ErrTooManyFailures = errors.New("browser: too many decryption failures")
	ErrUntrustedClient = errors.New("browser: client is not trusted")
)

// Config holds the host policy knobs.
type Config struct {
	// TrustedClients lists the client ids allowed to talk to the host.
	// Empty allows every client.
	TrustedClients []string
	// FailureBurst decryption failures are tolerated, refilling one per FailureEvery.
	FailureBurst int
	FailureEvery time.Duration
	// MaxClients caps how many client ids are tracked at once. The least
	// recently used client is forgotten to make room.
	MaxClients int
}

// DefaultConfig returns the policy used when none is configured.
func DefaultConfig() Config {
	return Config{FailureBurst: 5, FailureEvery: time.Minute, MaxClients: 64}
}

// Service owns the per-client sessions and answers requests.
type Service struct {
	store   domain.CredentialStore
	matcher *matcher.Matcher
	log     *slog.Logger

	trusted      map[string]struct{}
	failureLimit rate.Limit
	failureBurst int
	maxClients   int
	newSession   func(clientID string) *channel.Session

	mu      sync.Mutex
	clients map[string]*client
	seq     uint64
}

type client struct {
	session  *channel.Session
	failures *rate.Limiter
	lastUsed uint64
}

// rested reports whether the client's failure budget is full again, so
// forgetting it loses nothing.
func (c *client) rested(burst int) bool {
	return c.failures.Tokens() >= float64(burst)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSessionFactory replaces how sessions are created on key change.
func WithSessionFactory(fn func(clientID string) *channel.Session) Option {
	return func(s *Service) {
		if fn != nil {
			s.newSession = fn
		}
	}
}

// New constructs a Service answering from store through m.
func New(store domain.CredentialStore, m *matcher.Matcher, cfg Config, opts ...Option) *Service {
	if cfg.FailureBurst <= 0 {
		cfg.FailureBurst = DefaultConfig().FailureBurst
	}
	if cfg.FailureEvery <= 0 {
		cfg.FailureEvery = DefaultConfig().FailureEvery
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultConfig().MaxClients
	}
	s := &Service{
		store:        store,
		matcher:      m,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		trusted:      make(map[string]struct{}, len(cfg.TrustedClients)),
		failureLimit: rate.Every(cfg.FailureEvery),
		failureBurst: cfg.FailureBurst,
		maxClients:   cfg.MaxClients,
		newSession:   channel.New,
		clients:      make(map[string]*client),
	}
	for _, id := range cfg.TrustedClients {
		s.trusted[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle answers one request. Protocol-level failures are reported inside
// the Response; a non-nil error means the connection should be dropped.
func (s *Service) Handle(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if err := s.Authorize(req.ClientID); err != nil {
		s.log.Warn("request refused", "client", req.ClientID, "action", req.Action, "error", err)
		return errorResponse(req.Action, CodeActionDenied), nil
	}

	switch req.Action {
	case ActionChangePublicKeys:
		return s.changePublicKeys(req), nil
	case ActionGetLogins:
		return s.handleEncrypted(req)
	default:
		s.log.Debug("unknown action", "client", req.ClientID, "action", req.Action)
		return errorResponse(req.Action, CodeIncorrectAction), nil
	}
}

// Authorize reports ErrUntrustedClient for ids outside the trusted set.
func (s *Service) Authorize(clientID string) error {
	if !s.isTrusted(clientID) {
		return ErrUntrustedClient
	}
	return nil
}

func (s *Service) isTrusted(clientID string) bool {
	if len(s.trusted) == 0 {
		return true
	}
	_, ok := s.trusted[clientID]
	return ok
}

// changePublicKeys starts a fresh session. A failed handshake leaves any
// existing session in place.
func (s *Service) changePublicKeys(req Request) Response {
	if req.PublicKey == "" {
		return errorResponse(req.Action, CodePublicKeyNotReceived)
	}
	next, err := crypto.IncrementNonce(req.Nonce)
	if err != nil {
		return errorResponse(req.Action, CodeKeyChangeFailed)
	}

	sess := s.newSession(req.ClientID)
	pub, err := sess.Handshake(req.PublicKey, req.Nonce)
	if err != nil {
		sess.Close()
		s.log.Warn("key change failed", "client", req.ClientID, "error", err)
		return errorResponse(req.Action, CodeKeyChangeFailed)
	}

	s.mu.Lock()
	var evicted []*channel.Session
	c, ok := s.clients[req.ClientID]
	if !ok {
		evicted = s.makeRoomLocked()
		c = &client{failures: rate.NewLimiter(s.failureLimit, s.failureBurst)}
		s.clients[req.ClientID] = c
	}
	s.touchLocked(c)
	if c.session != nil {
		evicted = append(evicted, c.session)
	}
	c.session = sess
	s.mu.Unlock()

	for _, old := range evicted {
		old.Close()
	}
	s.log.Info("session established", "client", req.ClientID, "peer", sess.PeerFingerprint())

	return Response{
		Action:    req.Action,
		PublicKey: pub,
		Nonce:     next,
		Success:   trueStr,
	}
}

func (s *Service) handleEncrypted(req Request) (Response, error) {
	sess, failures := s.session(req.ClientID)
	if sess == nil || !sess.Established() {
		return errorResponse(req.Action, CodeKeyNotRecognized), nil
	}
	if req.Message == "" {
		return errorResponse(req.Action, CodeEmptyMessage), nil
	}

	plain, err := sess.Decrypt(req.Message, req.Nonce)
	if err != nil {
		if !failures.Allow() {
			s.log.Warn("decryption failure limit reached", "client", req.ClientID)
			s.Drop(req.ClientID)
			return errorResponse(req.Action, CodeCannotDecrypt), ErrTooManyFailures
		}
		s.log.Warn("message rejected", "client", req.ClientID, "action", req.Action, "error", err)
		return errorResponse(req.Action, CodeCannotDecrypt), nil
	}

	var reply any
	switch req.Action {
	case ActionGetLogins:
		var body loginsRequest
		if err := json.Unmarshal(plain, &body); err != nil {
			return errorResponse(req.Action, CodeCannotDecrypt), nil
		}
		if body.Action != req.Action {
			return errorResponse(req.Action, CodeIncorrectAction), nil
		}
		if body.URL == "" {
			return errorResponse(req.Action, CodeNoURL), nil
		}
		r, err := s.getLogins(body, sess.Nonce())
		if err != nil {
			s.log.Error("search failed", "client", req.ClientID, "error", err)
			return errorResponse(req.Action, CodeCannotEncrypt), nil
		}
		reply = r
	}

	return s.seal(req, sess, reply), nil
}

// seal encrypts reply under the session's next nonce.
func (s *Service) seal(req Request, sess *channel.Session, reply any) Response {
	raw, err := json.Marshal(reply)
	if err != nil {
		return errorResponse(req.Action, CodeCannotEncrypt)
	}
	nonce := sess.Nonce()
	ct, err := sess.Encrypt(raw, nonce)
	if err != nil {
		s.log.Warn("reply not encrypted", "client", req.ClientID, "error", err)
		return errorResponse(req.Action, CodeCannotEncrypt)
	}
	return Response{
		Action:   req.Action,
		Message:  ct,
		Nonce:    nonce,
		ClientID: req.ClientID,
	}
}

func (s *Service) getLogins(body loginsRequest, nonce string) (LoginsReply, error) {
	entries, err := s.matcher.SearchEntries(s.store, body.URL, body.SubmitURL)
	if err != nil {
		return LoginsReply{}, err
	}
	out := make([]domain.LoginResult, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.LoginResult{
			Login:    e.Username,
			Name:     e.Title,
			Password: e.Password,
			UUID:     e.UUIDHex(),
		})
	}
	return LoginsReply{
		Action:  ActionGetLogins,
		Count:   len(out),
		Entries: out,
		Nonce:   nonce,
		Success: trueStr,
	}, nil
}

func (s *Service) session(clientID string) (*channel.Session, *rate.Limiter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok || c.session == nil {
		return nil, nil
	}
	s.touchLocked(c)
	return c.session, c.failures
}

func (s *Service) touchLocked(c *client) {
	s.seq++
	c.lastUsed = s.seq
}

// makeRoomLocked forgets idle clients with a full failure budget, then the
// least recently used clients until a new one fits. It returns the sessions
// to close once s.mu is released.
func (s *Service) makeRoomLocked() []*channel.Session {
	for id, c := range s.clients {
		if c.session == nil && c.rested(s.failureBurst) {
			delete(s.clients, id)
		}
	}
	var evicted []*channel.Session
	for len(s.clients) >= s.maxClients {
		var oldestID string
		var oldest *client
		for id, c := range s.clients {
			if oldest == nil || c.lastUsed < oldest.lastUsed {
				oldestID, oldest = id, c
			}
		}
		delete(s.clients, oldestID)
		if oldest.session != nil {
			evicted = append(evicted, oldest.session)
		}
		s.log.Info("client evicted", "client", oldestID)
	}
	return evicted
}

// Drop closes and forgets the session of clientID. A drained failure budget
// is kept until it refills; otherwise the client is forgotten entirely.
func (s *Service) Drop(clientID string) {
	s.mu.Lock()
	c, ok := s.clients[clientID]
	var sess *channel.Session
	if ok {
		sess, c.session = c.session, nil
		if c.rested(s.failureBurst) {
			delete(s.clients, clientID)
		}
	}
	s.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

// Sessions returns the number of live sessions.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.clients {
		if c.session != nil {
			n++
		}
	}
	return n
}

// Clients returns the number of client ids currently tracked.
func (s *Service) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close wipes every session.
func (s *Service) Close() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[string]*client)
	s.mu.Unlock()
	for _, c := range clients {
		if c.session != nil {
			c.session.Close()
		}
	}
}

// HandleMessage decodes a raw JSON request, handles it and encodes the
// response. It has the shape of a transport handler: a returned error with a
// non-nil reply means "send this, then disconnect".
func (s *Service) HandleMessage(ctx context.Context, msg []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		s.log.Debug("undecodable request", "bytes", len(msg))
		return json.Marshal(errorResponse("", CodeIncorrectAction))
	}
	resp, herr := s.Handle(ctx, req)
	if herr != nil && ctx.Err() != nil {
		return nil, herr
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return out, herr
}
