package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"passlink/internal/domain"
)

const snapshotVersion = 1

// snapshot is the plaintext JSON form of a Database. Groups are listed in
// pre-order so a parent always precedes its children.
type snapshot struct {
	Version int           `json:"version"`
	Root    groupRecord   `json:"root"`
	Groups  []groupRecord `json:"groups"`
	Entries []entryRecord `json:"entries"`
}

type groupRecord struct {
	ID                uuid.UUID `json:"id"`
	Parent            uuid.UUID `json:"parent"`
	Name              string    `json:"name"`
	SearchingDisabled bool      `json:"searching_disabled,omitempty"`
	Recycled          bool      `json:"recycled,omitempty"`
}

type entryRecord struct {
	UUID           uuid.UUID `json:"uuid"`
	Group          uuid.UUID `json:"group"`
	Title          string    `json:"title"`
	Username       string    `json:"username"`
	Password       string    `json:"password"`
	URL            string    `json:"url"`
	AdditionalURLs []string  `json:"additional_urls,omitempty"`
}

func toGroupRecord(g domain.Group) groupRecord {
	return groupRecord{
		ID:                g.ID,
		Parent:            g.Parent,
		Name:              g.Name,
		SearchingDisabled: g.SearchingDisabled,
		Recycled:          g.Recycled,
	}
}

func (r groupRecord) group() domain.Group {
	return domain.Group{
		ID:                r.ID,
		Parent:            r.Parent,
		Name:              r.Name,
		SearchingDisabled: r.SearchingDisabled,
		Recycled:          r.Recycled,
	}
}

// marshalDatabase encodes every group and entry, including hidden ones.
func marshalDatabase(d *Database) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := snapshot{Version: snapshotVersion, Root: toGroupRecord(*d.groups[d.root])}
	d.walk(d.root, func(g *domain.Group) bool {
		if g.ID != d.root {
			s.Groups = append(s.Groups, toGroupRecord(*g))
		}
		for _, id := range d.members[g.ID] {
			e := d.entries[id]
			s.Entries = append(s.Entries, entryRecord{
				UUID:           e.UUID,
				Group:          e.Group,
				Title:          e.Title,
				Username:       e.Username,
				Password:       e.Password,
				URL:            e.URL,
				AdditionalURLs: e.AdditionalURLs,
			})
		}
		return true
	})
	return json.Marshal(s)
}

// unmarshalDatabase rebuilds a Database, preserving ids and order.
func unmarshalDatabase(b []byte) (*Database, error) {
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode database: %w", err)
	}
	if s.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported database version %d", s.Version)
	}
	if s.Root.ID == uuid.Nil {
		return nil, fmt.Errorf("decode database: missing root group")
	}

	d := newDatabase(s.Root.group())
	for _, r := range s.Groups {
		if _, ok := d.groups[r.Parent]; !ok {
			return nil, fmt.Errorf("group %q: parent: %w", r.Name, ErrGroupNotFound)
		}
		if _, dup := d.groups[r.ID]; dup || r.ID == uuid.Nil {
			return nil, fmt.Errorf("group %q: bad or duplicate id", r.Name)
		}
		g := r.group()
		d.groups[g.ID] = &g
		d.children[g.Parent] = append(d.children[g.Parent], g.ID)
	}
	for _, r := range s.Entries {
		e := domain.Entry{
			UUID:           r.UUID,
			Title:          r.Title,
			Username:       r.Username,
			Password:       r.Password,
			URL:            r.URL,
			AdditionalURLs: r.AdditionalURLs,
		}
		if r.UUID == uuid.Nil {
			return nil, fmt.Errorf("entry %q: missing uuid", r.Title)
		}
		if _, err := d.AddEntry(r.Group, e); err != nil {
			return nil, err
		}
	}
	return d, nil
}
