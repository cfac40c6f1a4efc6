package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolve_AutoEmptyCache(t *testing.T) {
	r := &Resolver{Store: tempStore(t)}

	_, err := r.Resolve("auto")
	if !errors.Is(err, ErrNoLastStore) {
		t.Fatalf("expected ErrNoLastStore, got %v", err)
	}
	// Resolution must not mutate anything.
	if len(r.Store.Sessions()) != 0 {
		t.Error("resolve mutated the cache")
	}
}

func TestResolve_AutoUsesLast(t *testing.T) {
	s := tempStore(t)
	s.RecordNew("/k", "vs_last")
	r := &Resolver{Store: s}

	id, err := r.Resolve("auto")
	if err != nil {
		t.Fatal(err)
	}
	if id != "vs_last" {
		t.Errorf("id = %q", id)
	}
}

func TestResolve_ExplicitIDPassthrough(t *testing.T) {
	r := &Resolver{Store: tempStore(t)}

	id, err := r.Resolve("vs_explicit")
	if err != nil {
		t.Fatal(err)
	}
	if id != "vs_explicit" {
		t.Errorf("id = %q", id)
	}
}

func TestResolve_MissWithoutCreate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	r := &Resolver{Store: tempStore(t)}

	_, err := r.Resolve("~/never-indexed")
	if !errors.Is(err, ErrNotIndexed) {
		t.Fatalf("expected ErrNotIndexed, got %v", err)
	}
}

func TestResolve_HitReturnsRecordedID(t *testing.T) {
	home := t.TempDir()
	home, err := filepath.EvalSymlinks(home)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)
	dir := filepath.Join(home, "docs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	s := tempStore(t)
	key, err := CanonicalKey(dir)
	if err != nil {
		t.Fatal(err)
	}
	s.RecordNew(key, "vs_docs")
	r := &Resolver{Store: s}

	// Both spellings resolve to the same session.
	for _, ref := range []string{dir, "~/docs"} {
		id, err := r.Resolve(ref)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", ref, err)
		}
		if id != "vs_docs" {
			t.Errorf("Resolve(%q) = %q", ref, id)
		}
	}
}

func TestResolve_MissInvokesCreate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var gotRef, gotKey string
	r := &Resolver{
		Store: tempStore(t),
		CreateMissing: func(reference, key string) (string, error) {
			gotRef, gotKey = reference, key
			return "vs_created", nil
		},
	}

	id, err := r.Resolve("~/fresh/*.md")
	if err != nil {
		t.Fatal(err)
	}
	if id != "vs_created" {
		t.Errorf("id = %q", id)
	}
	if gotRef != "~/fresh/*.md" {
		t.Errorf("reference = %q", gotRef)
	}
	wantKey := filepath.ToSlash(filepath.Join(home, "fresh")) + "/*.md"
	if gotKey != wantKey {
		t.Errorf("key = %q, want %q", gotKey, wantKey)
	}
}
