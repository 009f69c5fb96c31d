package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreGetPutDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	buf := []byte("v1")
	if err := s.Put(ctx, "k", buf); err != nil {
		t.Fatalf("put: %v", err)
	}
	buf[0] = 'x' // caller mutation must not leak into the store

	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", v, ok, err)
	}
	v[0] = 'y'
	if again, _, _ := s.Get(ctx, "k"); string(again) != "v1" {
		t.Fatalf("returned slice must be a copy, got %q", again)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if keys, _ := s.Keys(ctx); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestNewFromDirSeeds(t *testing.T) {
	dir := t.TempDir()
	// No files -> empty store
	s := NewFromDir(filepath.Join(dir, "missing"))
	if keys, _ := s.Keys(context.Background()); len(keys) != 0 {
		t.Fatalf("expected empty store, got %v", keys)
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("pos_transactions.json", "[]")
	mustWrite("notes.txt", "ignored")

	s = NewFromDir(dir)
	keys, _ := s.Keys(context.Background())
	if len(keys) != 1 || keys[0] != "pos_transactions" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
