// Package matcher decides which stored credentials may be offered for a page
// and in what order.
//
// A search runs in three stages:
//   - direct lookups ("passlink://by-uuid/<hex>", "passlink://by-path/<group>/<title>")
//     bypass all domain logic;
//   - every other entry is admitted when one of its URLs is eligible for the
//     page (valid, same site, compatible port and, optionally, scheme);
//   - admitted entries are scored and stably sorted, highest first.
//
// The matcher holds no mutable state and is safe for concurrent use.
package matcher
