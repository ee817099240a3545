// Package domain defines the plain types shared across passlink: box keys
// and nonces, the credential tree (groups and entries), match settings, and
// the store contract the matcher reads through.
package domain
