package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"passlink/internal/domain"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrEntryNotFound  = errors.New("entry not found")
	ErrDuplicateEntry = errors.New("entry already exists")
	ErrRootGroup      = errors.New("not allowed on the root group")
)

// Database is an in-memory credential tree. Groups own their subgroups and
// entries; entries point back to their group by id only.
//
// All methods are safe for concurrent use. Readers receive copies.
type Database struct {
	mu sync.RWMutex

	root   domain.GroupID
	groups map[domain.GroupID]*domain.Group
	// children and members keep insertion order.
	children map[domain.GroupID][]domain.GroupID
	members  map[domain.GroupID][]uuid.UUID
	entries  map[uuid.UUID]*domain.Entry
}

// NewDatabase returns a database holding only a root group.
func NewDatabase(rootName string) *Database {
	root := domain.Group{ID: uuid.New(), Name: rootName}
	return newDatabase(root)
}

func newDatabase(root domain.Group) *Database {
	d := &Database{
		root:     root.ID,
		groups:   make(map[domain.GroupID]*domain.Group),
		children: make(map[domain.GroupID][]domain.GroupID),
		members:  make(map[domain.GroupID][]uuid.UUID),
		entries:  make(map[uuid.UUID]*domain.Entry),
	}
	root.Parent = uuid.Nil
	d.groups[root.ID] = &root
	return d
}

// Root returns the id of the root group.
func (d *Database) Root() domain.GroupID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// AddGroup creates a group named name under parent.
func (d *Database) AddGroup(parent domain.GroupID, name string) (domain.Group, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.groups[parent]; !ok {
		return domain.Group{}, fmt.Errorf("add group %q: %w", name, ErrGroupNotFound)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return domain.Group{}, fmt.Errorf("add group %q: %w", name, err)
	}
	g := &domain.Group{ID: id, Parent: parent, Name: name}
	d.groups[id] = g
	d.children[parent] = append(d.children[parent], id)
	return *g, nil
}

// Group returns a copy of the group with id.
func (d *Database) Group(id domain.GroupID) (domain.Group, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	g, ok := d.groups[id]
	if !ok {
		return domain.Group{}, ErrGroupNotFound
	}
	return *g, nil
}

// FindGroup returns the direct child of parent called name.
func (d *Database) FindGroup(parent domain.GroupID, name string) (domain.Group, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, id := range d.children[parent] {
		if g := d.groups[id]; g.Name == name {
			return *g, true
		}
	}
	return domain.Group{}, false
}

// AddEntry stores e in group. A nil UUID is replaced with a fresh one.
// The stored copy is returned.
func (d *Database) AddEntry(group domain.GroupID, e domain.Entry) (domain.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.groups[group]; !ok {
		return domain.Entry{}, fmt.Errorf("add entry %q: %w", e.Title, ErrGroupNotFound)
	}
	if e.UUID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return domain.Entry{}, fmt.Errorf("add entry %q: %w", e.Title, err)
		}
		e.UUID = id
	}
	if _, dup := d.entries[e.UUID]; dup {
		return domain.Entry{}, fmt.Errorf("add entry %s: %w", e.UUIDHex(), ErrDuplicateEntry)
	}

	e = e.Clone()
	e.Group = group
	d.entries[e.UUID] = &e
	d.members[group] = append(d.members[group], e.UUID)
	return e.Clone(), nil
}

// UpdateEntry replaces the stored entry with the same UUID. Changing e.Group
// moves the entry to the end of the new group.
func (d *Database) UpdateEntry(e domain.Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, ok := d.entries[e.UUID]
	if !ok {
		return fmt.Errorf("update entry %s: %w", e.UUIDHex(), ErrEntryNotFound)
	}
	if _, ok := d.groups[e.Group]; !ok {
		return fmt.Errorf("update entry %s: %w", e.UUIDHex(), ErrGroupNotFound)
	}
	if cur.Group != e.Group {
		d.members[cur.Group] = slices.DeleteFunc(d.members[cur.Group], func(id uuid.UUID) bool { return id == e.UUID })
		d.members[e.Group] = append(d.members[e.Group], e.UUID)
	}
	*cur = e.Clone()
	return nil
}

// SetSearching enables or disables matching for a group and its subtree.
func (d *Database) SetSearching(id domain.GroupID, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[id]
	if !ok {
		return ErrGroupNotFound
	}
	g.SearchingDisabled = !enabled
	return nil
}

// RecycleGroup moves a group into the recycle bin. Its entries are kept but
// never matched.
func (d *Database) RecycleGroup(id domain.GroupID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id == d.root {
		return ErrRootGroup
	}
	g, ok := d.groups[id]
	if !ok {
		return ErrGroupNotFound
	}
	g.Recycled = true
	return nil
}

// Entry returns a copy of the entry with id.
func (d *Database) Entry(id uuid.UUID) (domain.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries[id]
	if !ok {
		return domain.Entry{}, ErrEntryNotFound
	}
	return e.Clone(), nil
}

// Entries lists searchable entries in pre-order: a group's own entries, then
// each subgroup in turn. Recycled and search-disabled subtrees are skipped.
func (d *Database) Entries() ([]domain.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.Entry, 0, len(d.entries))
	d.walk(d.root, func(g *domain.Group) bool {
		if g.Recycled || g.SearchingDisabled {
			return false
		}
		for _, id := range d.members[g.ID] {
			out = append(out, d.entries[id].Clone())
		}
		return true
	})
	return out, nil
}

// GroupPath returns the names from below the root down to id.
func (d *Database) GroupPath(id domain.GroupID) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var path []string
	for cur := id; cur != d.root; {
		g, ok := d.groups[cur]
		if !ok {
			return nil, fmt.Errorf("group path: %w", ErrGroupNotFound)
		}
		path = append(path, g.Name)
		cur = g.Parent
	}
	slices.Reverse(path)
	return path, nil
}

// Len returns the number of stored entries, searchable or not.
func (d *Database) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// walk visits groups depth-first. Returning false from fn skips the subtree.
// Callers hold d.mu.
func (d *Database) walk(id domain.GroupID, fn func(*domain.Group) bool) {
	g := d.groups[id]
	if !fn(g) {
		return
	}
	for _, child := range d.children[id] {
		d.walk(child, fn)
	}
}

var _ domain.CredentialStore = (*Database)(nil)
