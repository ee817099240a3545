// Package crypto exposes the primitives behind the extension channel.
//
// Contents
//
//   - Curve25519 box keypairs (GenerateKeyPair, KeyPairFromSecret)
//   - NaCl box sealing and opening over a precomputed shared key
//     (SharedKey, Seal, Open)
//   - Base64 codecs for keys and nonces (EncodeKey, DecodeKey, DecodeNonce)
//   - Little-endian nonce increment (Increment, IncrementNonce)
//   - Short public-key fingerprints for logging (Fingerprint)
//
// # Notes
//
// Keys and nonces are fixed-size array types from internal/domain. Shared
// keys are secrets; callers wipe them with memzero.Zero when a session ends.
package crypto
