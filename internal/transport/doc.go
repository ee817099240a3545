// Package transport implements native-messaging framing over a byte stream.
//
// Every message is a 32-bit length in native byte order followed by that many
// bytes of UTF-8 JSON. The host reads requests from stdin and writes replies
// to stdout; nothing else may write to stdout while a Conn is serving.
package transport
