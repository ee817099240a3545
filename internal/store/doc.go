// Package store holds the credential database.
//
// Database is the in-memory group/entry tree the matcher searches.
// FileStore persists it as a single JSON file sealed with a passphrase:
// scrypt derives a ChaCha20-Poly1305 key, and writes go through a temp file
// and rename so a crash never leaves a half-written database.
package store
