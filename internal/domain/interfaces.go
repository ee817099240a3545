package domain

// CredentialStore is the read side of the credential database.
//
// Implementations must return copies; callers never mutate stored entries.
type CredentialStore interface {
	// Entries lists every searchable entry reachable from the root group,
	// in store order.
	Entries() ([]Entry, error)

	// GroupPath returns the group names from the root (exclusive) down to id.
	GroupPath(id GroupID) ([]string, error)
}
