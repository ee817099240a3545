package urlnorm

import (
	"net/netip"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// BaseDomain returns the registrable domain of a URL or bare host:
// "https://another.example.co.uk" and "another.example.co.uk" both give
// "example.co.uk". IP addresses are returned unchanged, as are hosts with
// no registrable part ("localhost", "github").
func BaseDomain(urlOrHost string) string {
	host := urlOrHost
	if u, err := Parse(urlOrHost); err == nil && u.Host != "" {
		host = u.Host
	}
	return baseDomainOfHost(strings.ToLower(host))
}

func baseDomainOfHost(host string) string {
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return ""
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return host
	}
	if !strings.Contains(host, ".") {
		return host
	}
	base, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// host is itself a public suffix, e.g. "co.uk".
		return host
	}
	return base
}

// SameSite reports whether candidate may be offered on target: the two hosts
// share a base domain, and target is candidate or one of its subdomains.
func SameSite(candidateHost, targetHost string) bool {
	if candidateHost == "" || targetHost == "" {
		return false
	}
	if baseDomainOfHost(candidateHost) != baseDomainOfHost(targetHost) {
		return false
	}
	return targetHost == candidateHost || strings.HasSuffix(targetHost, "."+candidateHost)
}
