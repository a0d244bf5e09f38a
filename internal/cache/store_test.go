package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cardforge/cardforge/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContentID_Stability(t *testing.T) {
	a := ContentID(types.Metadata{Title: "The Selfish Gene", Author: "Dawkins"})
	b := ContentID(types.Metadata{Title: "  the selfish   GENE ", Author: "dawkins"})
	if a != b {
		t.Error("normalized metadata should produce the same content ID")
	}

	c := ContentID(types.Metadata{Title: "The Selfish Gene", Author: "Someone Else"})
	if a == c {
		t.Error("different authors should produce different content IDs")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok := s.Get(ctx, "doc1", KindStructure); ok {
		t.Fatal("fresh store should miss")
	}

	if err := s.Set(ctx, "doc1", KindStructure, []byte(`{"chapters":[]}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok := s.Get(ctx, "doc1", KindStructure)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(value) != `{"chapters":[]}` {
		t.Errorf("unexpected value: %s", value)
	}

	// Overwrite replaces.
	if err := s.Set(ctx, "doc1", KindStructure, []byte(`{"chapters":[1]}`)); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}
	value, _ = s.Get(ctx, "doc1", KindStructure)
	if string(value) != `{"chapters":[1]}` {
		t.Errorf("overwrite did not replace value: %s", value)
	}
}

func TestStore_JSONAndCorruption(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	type payload struct {
		Names []string `json:"names"`
	}

	if err := s.SetJSON(ctx, "doc1", KindTier("flashcards"), payload{Names: []string{"a", "b"}}); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got payload
	if !s.GetJSON(ctx, "doc1", KindTier("flashcards"), &got) {
		t.Fatal("expected JSON hit")
	}
	if len(got.Names) != 2 {
		t.Errorf("got %d names, want 2", len(got.Names))
	}

	// Corrupt entry reads as a miss, not an error.
	if err := s.Set(ctx, "doc2", KindFinal, []byte("{not json")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	var out payload
	if s.GetJSON(ctx, "doc2", KindFinal, &out) {
		t.Error("corrupt entry should read as a miss")
	}
}

func TestStore_ListAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []struct{ id, kind string }{
		{"doc1", KindStructure},
		{"doc1", KindFinal},
		{"doc2", KindFinal},
	} {
		if err := s.Set(ctx, key.id, key.kind, []byte("x")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	n, err := s.Clear(ctx, "doc1")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared %d entries, want 2", n)
	}

	if _, ok := s.Get(ctx, "doc2", KindFinal); !ok {
		t.Error("doc2 should survive a doc1-scoped clear")
	}
}
