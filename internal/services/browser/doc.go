// Package browser dispatches native-messaging requests from the browser
// extension.
//
// Each client id owns one channel.Session. "change-public-keys" replaces
// that session; every other action arrives encrypted under it, is decrypted,
// dispatched, and answered encrypted with the next nonce. Repeated
// decryption failures from one client exhaust a token bucket and the
// service asks the host to disconnect.
package browser
