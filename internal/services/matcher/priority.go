package matcher

import (
	"strings"

	"passlink/internal/domain"
	"passlink/internal/urlnorm"
)

const (
	scoreNone     = 0
	scoreSameHost = 40
	scoreSiteRoot = 90
	scoreExact    = 100
)

// scoreInput is one candidate URL seen against one page.
type scoreInput struct {
	raw   string
	url   urlnorm.URL
	valid bool

	host          string
	submitURL     string
	baseSubmitURL string
	baseScheme    string
	fullURL       string
}

type priorityRule struct {
	name  string
	score int
	match func(in scoreInput) bool
}

// priorityRules are tried in order; the first match decides the score.
var priorityRules = []priorityRule{
	{
		name:  "ineligible",
		score: scoreNone,
		match: func(in scoreInput) bool {
			return !in.valid ||
				!in.url.ExplicitScheme ||
				in.url.Scheme != in.baseScheme ||
				!urlnorm.SameSite(in.url.Host, in.host)
		},
	},
	{
		name:  "exact",
		score: scoreExact,
		match: func(in scoreInput) bool {
			return in.raw == in.submitURL || in.raw == in.fullURL ||
				in.raw == withoutQuery(in.submitURL) || in.raw == withoutQuery(in.fullURL)
		},
	},
	{
		name:  "site root",
		score: scoreSiteRoot,
		match: func(in scoreInput) bool {
			return strings.TrimSuffix(in.raw, "/") == in.baseSubmitURL
		},
	},
	{
		name:  "same host",
		score: scoreSameHost,
		match: func(in scoreInput) bool { return in.url.Host == in.host },
	},
}

// SortPriority scores e for a page: the best score over all of e's URLs.
// host is the page host, baseSubmitURL the origin of the submit URL and
// fullURL the page URL.
func (m *Matcher) SortPriority(e domain.Entry, host, submitURL, baseSubmitURL, fullURL string) int {
	score, _ := bestScore(e, host, submitURL, baseSubmitURL, fullURL)
	return score
}

// SortEntries orders entries for a page without filtering them, then applies
// BestMatchOnly.
func (m *Matcher) SortEntries(entries []domain.Entry, host, submitURL, fullURL string) []domain.Entry {
	base := originOf(submitURL)
	if base == "" {
		base = originOf(fullURL)
	}
	cs := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		score, matched := bestScore(e, host, submitURL, base, fullURL)
		cs = append(cs, Candidate{Entry: e, Score: score, MatchedURL: matched})
	}
	return entriesOf(m.rank(cs))
}

func bestScore(e domain.Entry, host, submitURL, baseSubmitURL, fullURL string) (int, string) {
	in := scoreInput{
		host:          strings.ToLower(host),
		submitURL:     submitURL,
		baseSubmitURL: baseSubmitURL,
		fullURL:       fullURL,
	}
	if b, err := urlnorm.Parse(baseSubmitURL); err == nil {
		in.baseScheme = b.Scheme
	}

	best, matched := scoreNone, ""
	for i, raw := range e.URLs() {
		in.raw = raw
		in.valid = urlnorm.Valid(raw)
		in.url, _ = urlnorm.Parse(raw)
		if s := score(in); i == 0 || s > best {
			best, matched = s, raw
		}
	}
	return best, matched
}

func score(in scoreInput) int {
	for _, r := range priorityRules {
		if r.match(in) {
			return r.score
		}
	}
	return scoreNone
}

func originOf(raw string) string {
	if raw == "" || !urlnorm.Valid(raw) {
		return ""
	}
	u, err := urlnorm.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Origin()
}

// withoutQuery drops the query and fragment.
func withoutQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
