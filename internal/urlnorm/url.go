package urlnorm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultScheme is assumed when a URL carries no scheme.
const DefaultScheme = "https"

var ErrInvalidURL = errors.New("invalid url")

// URL is the decomposed form of a URL string.
type URL struct {
	Raw string

	// Scheme is lowercased; DefaultScheme when the string had none.
	Scheme string
	// ExplicitScheme is false for schemeless and protocol-relative URLs.
	ExplicitScheme bool

	// Host is lowercased, without brackets or port.
	Host string
	// Port is 0 when absent.
	Port int

	Path     string
	Query    string
	Fragment string

	// emptyAuthority is set for "scheme:///..." forms.
	emptyAuthority bool
}

// Origin returns scheme://host[:port] with no path.
func (u URL) Origin() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	if strings.Contains(u.Host, ":") {
		b.WriteString("[" + u.Host + "]")
	} else {
		b.WriteString(u.Host)
	}
	if u.Port != 0 {
		b.WriteString(":" + strconv.Itoa(u.Port))
	}
	return b.String()
}

// IsLocal reports whether the scheme addresses the local machine rather than a site.
func (u URL) IsLocal() bool {
	_, ok := localSchemes[u.Scheme]
	return ok
}

// Parse decomposes raw. It fails only when no host/port split is possible;
// use Valid to decide whether the result is safe to match on.
func Parse(raw string) (URL, error) {
	u := URL{Raw: raw, Scheme: DefaultScheme}
	s := strings.TrimSpace(raw)
	if s == "" {
		return u, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	rest := s
	switch scheme, after, ok := splitScheme(s); {
	case ok:
		u.Scheme = scheme
		u.ExplicitScheme = true
		rest = after
	case strings.HasPrefix(s, "//"):
		rest = s[2:]
	case hasBrokenSeparator(s):
		return u, fmt.Errorf("%w: malformed scheme separator", ErrInvalidURL)
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		u.Fragment = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		u.Query = rest[i+1:]
		rest = rest[:i]
	}
	authority := rest
	// Browsers end the authority at a backslash as well as a slash.
	if i := strings.IndexAny(rest, `/\`); i >= 0 {
		authority, u.Path = rest[:i], rest[i:]
	}
	if authority == "" {
		u.emptyAuthority = true
		return u, nil
	}
	if u.IsLocal() {
		// Local schemes keep their body opaque.
		u.Path = rest
		return u, nil
	}

	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}
	host, port, err := splitHostPort(authority)
	if err != nil {
		return u, err
	}
	u.Host = strings.ToLower(host)
	u.Port = port
	return u, nil
}

// splitScheme recognises "scheme://rest".
func splitScheme(s string) (scheme, rest string, ok bool) {
	i := strings.Index(s, "://")
	if i <= 0 || !isScheme(s[:i]) {
		return "", "", false
	}
	return strings.ToLower(s[:i]), s[i+3:], true
}

// hasBrokenSeparator catches "http:/example.com" and "https:example.com" style
// typos for network schemes.
func hasBrokenSeparator(s string) bool {
	i := strings.IndexByte(s, ':')
	if i <= 0 || !isScheme(s[:i]) {
		return false
	}
	after := s[i+1:]
	if strings.HasPrefix(after, "/") {
		return true
	}
	_, network := networkSchemes[strings.ToLower(s[:i])]
	return network
}

func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return s != ""
}

func splitHostPort(authority string) (string, int, error) {
	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return "", 0, fmt.Errorf("%w: unterminated IPv6 literal", ErrInvalidURL)
		}
		host, rest := authority[1:end], authority[end+1:]
		if rest == "" {
			return host, 0, nil
		}
		if !strings.HasPrefix(rest, ":") {
			return "", 0, fmt.Errorf("%w: junk after IPv6 literal", ErrInvalidURL)
		}
		port, err := parsePort(rest[1:])
		return host, port, err
	}
	i := strings.LastIndexByte(authority, ':')
	if i < 0 {
		return authority, 0, nil
	}
	port, err := parsePort(authority[i+1:])
	return authority[:i], port, err
}

func parsePort(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 || s[0] == '+' || s[0] == '-' {
		return 0, fmt.Errorf("%w: bad port", ErrInvalidURL)
	}
	return p, nil
}
