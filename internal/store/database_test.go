package store_test

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"

	"passlink/internal/domain"
	"passlink/internal/store"
)

func titles(es []domain.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Title
	}
	return out
}

func TestDatabase_EntriesPreOrder(t *testing.T) {
	db := store.NewDatabase("Root")
	root := db.Root()
	a, _ := db.AddGroup(root, "A")
	b, _ := db.AddGroup(root, "B")
	a1, _ := db.AddGroup(a.ID, "A1")

	for _, tc := range []struct {
		group domain.GroupID
		title string
	}{
		{b.ID, "b"},
		{root, "r1"},
		{a1.ID, "a1"},
		{a.ID, "a"},
		{root, "r2"},
	} {
		if _, err := db.AddEntry(tc.group, domain.Entry{Title: tc.title}); err != nil {
			t.Fatalf("add %s: %v", tc.title, err)
		}
	}

	got, err := db.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	want := []string{"r1", "r2", "a", "a1", "b"}
	if !slices.Equal(titles(got), want) {
		t.Fatalf("order = %v, want %v", titles(got), want)
	}
}

func TestDatabase_HiddenSubtrees(t *testing.T) {
	db := store.NewDatabase("Root")
	bin, _ := db.AddGroup(db.Root(), "Recycle Bin")
	old, _ := db.AddGroup(bin.ID, "Old")
	quiet, _ := db.AddGroup(db.Root(), "Quiet")
	db.AddEntry(bin.ID, domain.Entry{Title: "deleted"})
	db.AddEntry(old.ID, domain.Entry{Title: "deleted too"})
	db.AddEntry(quiet.ID, domain.Entry{Title: "quiet"})
	db.AddEntry(db.Root(), domain.Entry{Title: "visible"})

	if err := db.RecycleGroup(bin.ID); err != nil {
		t.Fatalf("recycle: %v", err)
	}
	if err := db.SetSearching(quiet.ID, false); err != nil {
		t.Fatalf("set searching: %v", err)
	}
	got, _ := db.Entries()
	if !slices.Equal(titles(got), []string{"visible"}) {
		t.Fatalf("entries = %v", titles(got))
	}

	if err := db.SetSearching(quiet.ID, true); err != nil {
		t.Fatalf("set searching: %v", err)
	}
	got, _ = db.Entries()
	if !slices.Equal(titles(got), []string{"visible", "quiet"}) {
		t.Fatalf("entries = %v", titles(got))
	}

	if err := db.RecycleGroup(db.Root()); !errors.Is(err, store.ErrRootGroup) {
		t.Fatalf("recycling root: got %v", err)
	}
}

func TestDatabase_GroupPath(t *testing.T) {
	db := store.NewDatabase("Root")
	a, _ := db.AddGroup(db.Root(), "Internet")
	b, _ := db.AddGroup(a.ID, "Dev")

	path, err := db.GroupPath(b.ID)
	if err != nil {
		t.Fatalf("group path: %v", err)
	}
	if !slices.Equal(path, []string{"Internet", "Dev"}) {
		t.Fatalf("path = %v", path)
	}
	if path, _ := db.GroupPath(db.Root()); len(path) != 0 {
		t.Fatalf("root path = %v, want empty", path)
	}
	if _, err := db.GroupPath(uuid.New()); !errors.Is(err, store.ErrGroupNotFound) {
		t.Fatalf("unknown group: got %v", err)
	}
}

func TestDatabase_ReturnsCopies(t *testing.T) {
	db := store.NewDatabase("Root")
	e, err := db.AddEntry(db.Root(), domain.Entry{Title: "t", AdditionalURLs: []string{"https://a.example"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.UUID == uuid.Nil {
		t.Fatal("expected a generated uuid")
	}
	e.AdditionalURLs[0] = "https://mutated.example"
	e.Title = "mutated"

	got, _ := db.Entry(e.UUID)
	if got.Title != "t" || got.AdditionalURLs[0] != "https://a.example" {
		t.Fatalf("stored entry changed through a copy: %+v", got)
	}
}

func TestDatabase_AddEntryErrors(t *testing.T) {
	db := store.NewDatabase("Root")
	if _, err := db.AddEntry(uuid.New(), domain.Entry{}); !errors.Is(err, store.ErrGroupNotFound) {
		t.Fatalf("unknown group: got %v", err)
	}
	id := uuid.New()
	if _, err := db.AddEntry(db.Root(), domain.Entry{UUID: id}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := db.AddEntry(db.Root(), domain.Entry{UUID: id}); !errors.Is(err, store.ErrDuplicateEntry) {
		t.Fatalf("duplicate: got %v", err)
	}
}

func TestDatabase_UpdateEntryMoves(t *testing.T) {
	db := store.NewDatabase("Root")
	g, _ := db.AddGroup(db.Root(), "G")
	e, _ := db.AddEntry(db.Root(), domain.Entry{Title: "first"})
	db.AddEntry(db.Root(), domain.Entry{Title: "second"})

	e.Group = g.ID
	e.Title = "moved"
	if err := db.UpdateEntry(e); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := db.Entries()
	if !slices.Equal(titles(got), []string{"second", "moved"}) {
		t.Fatalf("entries = %v", titles(got))
	}
	if err := db.UpdateEntry(domain.Entry{UUID: uuid.New(), Group: g.ID}); !errors.Is(err, store.ErrEntryNotFound) {
		t.Fatalf("unknown entry: got %v", err)
	}
}

func TestDatabase_ConcurrentReadWrite(t *testing.T) {
	db := store.NewDatabase("Root")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := db.AddEntry(db.Root(), domain.Entry{Title: "x"}); err != nil {
					t.Errorf("add: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := db.Entries(); err != nil {
					t.Errorf("entries: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if db.Len() != 400 {
		t.Fatalf("len = %d, want 400", db.Len())
	}
}
