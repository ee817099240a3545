package urlnorm

import (
	"net/netip"
	"strings"
	"unicode"
)

// Characters that never appear in a URL worth matching. '*' catches
// wildcard hosts and glob-like paths.
const deniedChars = "<>^`{|}*"

// Schemes that address the local machine. They skip host checks.
var localSchemes = map[string]struct{}{
	"cmd":  {}, // launches a local command
	"kdbx": {}, // opens another database
	"file": {},
}

// Network schemes for which "scheme:" without "//" is a typo.
var networkSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"ftp":   {},
	"ws":    {},
	"wss":   {},
}

// Valid reports whether raw is safe to use for credential matching.
func Valid(raw string) bool {
	_, ok := parseValid(raw)
	return ok
}

// parseValid parses raw and applies every validity rule.
func parseValid(raw string) (URL, bool) {
	u, err := Parse(raw)
	if err != nil {
		return u, false
	}

	switch u.Scheme {
	case "cmd", "kdbx":
		// Opaque launch strings; only require a body.
		return u, u.Path != ""
	}
	if strings.ContainsAny(raw, deniedChars) {
		return u, false
	}
	if u.IsLocal() {
		return u, true
	}
	if strings.ContainsRune(raw, '\\') {
		return u, false
	}
	if u.emptyAuthority || !validHost(u.Host) {
		return u, false
	}
	return u, true
}

func validHost(host string) bool {
	if host == "" {
		return false
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return false
		}
		for _, r := range label {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
				return false
			}
		}
	}
	return true
}
