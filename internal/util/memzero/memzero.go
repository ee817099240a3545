// Package memzero wipes secret buffers.
package memzero

import "runtime"

// Zero overwrites b with zeros. It is best effort: the Go runtime may have
// copied the data elsewhere before this runs.
//
//go:noinline
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
