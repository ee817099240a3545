package matcher

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/google/uuid"

	"passlink/internal/domain"
	"passlink/internal/urlnorm"
)

// DefaultLookupScheme prefixes direct lookup URLs.
const DefaultLookupScheme = "passlink"

const (
	lookupByUUID = "by-uuid"
	lookupByPath = "by-path"
)

// Candidate is an admitted entry with its score and the URL that earned it.
type Candidate struct {
	Entry      domain.Entry
	Score      int
	MatchedURL string
}

// Matcher scores and filters credentials against page URLs.
type Matcher struct {
	settings     domain.MatchSettings
	lookupScheme string
	log          *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLookupScheme replaces the "passlink" prefix of direct lookup URLs.
func WithLookupScheme(scheme string) Option {
	return func(m *Matcher) {
		if scheme != "" {
			m.lookupScheme = strings.ToLower(scheme)
		}
	}
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.log = l
		}
	}
}

// New returns a Matcher using settings.
func New(settings domain.MatchSettings, opts ...Option) *Matcher {
	m := &Matcher{
		settings:     settings,
		lookupScheme: DefaultLookupScheme,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Settings returns the toggles the matcher was built with.
func (m *Matcher) Settings() domain.MatchSettings { return m.settings }

// SearchEntries returns the entries that may be offered on target, best first.
// A target that matches nothing yields an empty slice and no error.
func (m *Matcher) SearchEntries(store domain.CredentialStore, target, submit string) ([]domain.Entry, error) {
	cs, err := m.Search(store, target, submit)
	if err != nil {
		return nil, err
	}
	return entriesOf(cs), nil
}

// Search is SearchEntries with scores attached.
func (m *Matcher) Search(store domain.CredentialStore, target, submit string) ([]Candidate, error) {
	entries, err := store.Entries()
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	if kind, value, ok := m.lookup(target); ok {
		cs, err := m.searchLookup(store, entries, kind, value)
		if err != nil {
			return nil, err
		}
		m.log.Debug("direct lookup", "kind", kind, "results", len(cs))
		return cs, nil
	}

	q, ok := newQuery(target, submit)
	if !ok {
		m.log.Debug("target url rejected", "url", target)
		return []Candidate{}, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(entries))
	out := make([]Candidate, 0)
	for _, e := range entries {
		if _, dup := seen[e.UUID]; dup {
			continue
		}
		if !m.admits(e, q) {
			continue
		}
		seen[e.UUID] = struct{}{}
		out = append(out, m.candidate(e, q))
	}

	out = m.rank(out)
	m.log.Debug("search", "host", q.target.Host, "results", len(out))
	return out, nil
}

// HandleURL reports whether a credential saved for candidate may be offered on target.
func (m *Matcher) HandleURL(candidate, target, submit string) bool {
	q, ok := newQuery(target, submit)
	if !ok {
		return false
	}
	return m.handleURL(candidate, q)
}

// HandleEntry reports whether e may be offered on target. Direct by-path
// lookups see e as a root-level entry because an entry alone does not know
// its group names; SearchEntries resolves them through the store.
func (m *Matcher) HandleEntry(e domain.Entry, target, submit string) bool {
	if kind, value, ok := m.lookup(target); ok {
		return lookupMatches(kind, value, e, nil)
	}
	q, ok := newQuery(target, submit)
	if !ok {
		return false
	}
	return m.admits(e, q)
}

// query is a parsed search target.
type query struct {
	target urlnorm.URL
	// file targets carry the real location in submit and match by equality.
	file bool

	host          string
	submitURL     string
	baseSubmitURL string
	fullURL       string
}

func newQuery(target, submit string) (query, bool) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(target)), "file://") {
		return query{file: true, submitURL: submit, fullURL: target}, true
	}
	if !urlnorm.Valid(target) {
		return query{}, false
	}
	t, err := urlnorm.Parse(target)
	if err != nil {
		return query{}, false
	}
	q := query{
		target:        t,
		host:          t.Host,
		submitURL:     submit,
		baseSubmitURL: t.Origin(),
		fullURL:       target,
	}
	if submit != "" && urlnorm.Valid(submit) {
		if s, err := urlnorm.Parse(submit); err == nil {
			q.baseSubmitURL = s.Origin()
		}
	}
	return q, true
}

func (m *Matcher) admits(e domain.Entry, q query) bool {
	for _, u := range e.URLs() {
		if m.handleURL(u, q) {
			return true
		}
	}
	return false
}

func (m *Matcher) handleURL(candidate string, q query) bool {
	if q.file {
		return q.submitURL != "" && candidate == q.submitURL
	}
	if !urlnorm.Valid(candidate) {
		return false
	}
	c, err := urlnorm.Parse(candidate)
	if err != nil || c.IsLocal() {
		return false
	}
	if !urlnorm.SameSite(c.Host, q.target.Host) {
		return false
	}
	if c.Port != 0 && q.target.Port != 0 && c.Port != q.target.Port {
		return false
	}
	if m.settings.RequireSchemeMatch && c.Scheme != q.target.Scheme {
		return false
	}
	return true
}

func (m *Matcher) candidate(e domain.Entry, q query) Candidate {
	if q.file {
		return Candidate{Entry: e, Score: scoreExact, MatchedURL: q.submitURL}
	}
	score, matched := bestScore(e, q.host, q.submitURL, q.baseSubmitURL, q.fullURL)
	return Candidate{Entry: e, Score: score, MatchedURL: matched}
}

// rank sorts by descending score, keeping store order among equals, and
// applies BestMatchOnly.
func (m *Matcher) rank(cs []Candidate) []Candidate {
	slices.SortStableFunc(cs, func(a, b Candidate) int { return b.Score - a.Score })
	if m.settings.BestMatchOnly && len(cs) > 0 {
		top := cs[0].Score
		i := 1
		for i < len(cs) && cs[i].Score == top {
			i++
		}
		cs = cs[:i]
	}
	return cs
}

// lookup splits a direct lookup target. ok is true for any URL using the
// lookup scheme; unknown lookup kinds then match nothing.
func (m *Matcher) lookup(target string) (kind, value string, ok bool) {
	prefix := m.lookupScheme + "://"
	if len(target) < len(prefix) || !strings.EqualFold(target[:len(prefix)], prefix) {
		return "", "", false
	}
	kind, value, _ = strings.Cut(target[len(prefix):], "/")
	return kind, value, true
}

func (m *Matcher) searchLookup(store domain.CredentialStore, entries []domain.Entry, kind, value string) ([]Candidate, error) {
	out := make([]Candidate, 0, 1)
	paths := make(map[domain.GroupID][]string)
	for _, e := range entries {
		var path []string
		if kind == lookupByPath {
			p, ok := paths[e.Group]
			if !ok {
				var err error
				if p, err = store.GroupPath(e.Group); err != nil {
					return nil, fmt.Errorf("group path: %w", err)
				}
				paths[e.Group] = p
			}
			path = p
		}
		if lookupMatches(kind, value, e, path) {
			out = append(out, Candidate{Entry: e, Score: scoreExact, MatchedURL: e.URL})
			if kind == lookupByUUID {
				break
			}
		}
	}
	return out, nil
}

func lookupMatches(kind, value string, e domain.Entry, groupPath []string) bool {
	switch kind {
	case lookupByUUID:
		return value != "" && value == e.UUIDHex()
	case lookupByPath:
		if v, err := url.PathUnescape(value); err == nil {
			value = v
		}
		full := append(slices.Clone(groupPath), e.Title)
		return value != "" && value == strings.Join(full, "/")
	}
	return false
}

func entriesOf(cs []Candidate) []domain.Entry {
	out := make([]domain.Entry, len(cs))
	for i, c := range cs {
		out[i] = c.Entry
	}
	return out
}
