// Package urlnorm turns URL strings saved by users, or sent by the browser
// extension, into a comparable form.
//
// Stored URLs are messy: some lack a scheme ("github.com/login"), some are
// protocol-relative ("//github.com"), some are not network URLs at all
// ("cmd://..." launchers, "file://" paths). Parse decomposes all of them
// without rewriting the stored string; a missing scheme is read as https.
//
// Valid is the gate used before any URL takes part in credential matching.
// It is a deny-list, not a grammar: it rejects the shapes that have caused
// credentials to be offered on the wrong site (wildcards, bracket
// characters, broken scheme separators, empty authorities, empty host
// labels) and accepts everything else Parse can decompose.
//
// BaseDomain reduces a host to its registrable domain using the public
// suffix list, so "accounts.example.co.uk" and "www.example.co.uk" compare
// equal while "example.co.uk" and "other.co.uk" do not.
package urlnorm
