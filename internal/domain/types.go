package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// GroupID identifies a group in the credential tree.
type GroupID = uuid.UUID

// Group is a node of the credential tree. Children are owned by the store;
// a group only knows its parent by id.
type Group struct {
	ID     GroupID
	Parent GroupID // uuid.Nil for the root
	Name   string

	// SearchingDisabled hides the group's entries (and its subgroups') from matching.
	SearchingDisabled bool
	// Recycled marks the recycle-bin subtree.
	Recycled bool
}

// Entry is a stored credential. Entries reference their group by id.
type Entry struct {
	UUID     uuid.UUID
	Group    GroupID
	Title    string
	Username string
	Password string

	// URL is the primary URL. AdditionalURLs are matched the same way.
	URL            string
	AdditionalURLs []string
}

// UUIDHex returns the 32-character lowercase hex form of the entry id.
func (e Entry) UUIDHex() string {
	return hex.EncodeToString(e.UUID[:])
}

// URLs returns the primary URL followed by the additional URLs, skipping empties.
func (e Entry) URLs() []string {
	out := make([]string, 0, 1+len(e.AdditionalURLs))
	if e.URL != "" {
		out = append(out, e.URL)
	}
	for _, u := range e.AdditionalURLs {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Clone returns a copy that shares no slices with e.
func (e Entry) Clone() Entry {
	e.AdditionalURLs = append([]string(nil), e.AdditionalURLs...)
	return e
}

// MatchSettings are the user toggles that shape credential matching.
type MatchSettings struct {
	RequireSchemeMatch bool
	BestMatchOnly      bool
}

// LoginResult is one credential returned to the extension.
type LoginResult struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Password string `json:"password"`
	UUID     string `json:"uuid"`
}
