// Package channel implements the encrypted message channel between the host
// and one browser-extension client.
//
// # Overview
//
// A Session owns an ephemeral Curve25519 keypair, the peer's public key and
// the nonce state for one client. Messages are sealed with the NaCl box
// construction: the host's secret key, the peer's public key and a 24-byte
// nonce produce an authenticated ciphertext that only the peer can open.
//
// # Flow
//
//  1. The client sends its public key and a starting nonce
//     ("change-public-keys"); Handshake records both and returns the host's
//     public key.
//  2. Each request carries a nonce n. Decrypt opens it with n, then the
//     session nonce becomes n+1.
//  3. The reply is sealed with n+1 (Session.Nonce), after which the session
//     nonce becomes n+2. Both sides advance in lock-step, so nonces never
//     need to be negotiated again.
//
// # Replay protection
//
// A session refuses to seal twice, or open twice, under the same nonce, and
// refuses the all-zero nonce. Opening failures of any kind surface as
// ErrDecryptionFailed so a caller cannot tell a forged message from a
// replayed one.
//
// # Concurrency
//
// All methods lock the session; calls against one session are serialized.
// Sessions share nothing, so different clients can be served in parallel.
package channel
