package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCache_BasicOperations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.mod")
	if err := os.WriteFile(path, []byte("module example.com/a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := NewFileCache[string](8)
	if _, exists := cache.Get(path); exists {
		t.Error("expected empty cache")
	}

	if err := cache.Set(path, "example.com/a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, exists := cache.Get(path)
	if !exists || value != "example.com/a" {
		t.Errorf("expected cached value, got %q %v", value, exists)
	}
	if cache.Size() != 1 {
		t.Errorf("expected size 1, got %d", cache.Size())
	}

	cache.Delete(path)
	if _, exists := cache.Get(path); exists {
		t.Error("expected entry to be deleted")
	}
}

func TestFileCache_InvalidatesChangedFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.mod")
	if err := os.WriteFile(path, []byte("module example.com/a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := NewFileCache[string](8)
	if err := cache.Set(path, "example.com/a"); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("module example.com/bb\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	if _, exists := cache.Get(path); exists {
		t.Error("expected changed file to invalidate the entry")
	}
	if cache.Size() != 0 {
		t.Errorf("expected stale entry to be removed, size %d", cache.Size())
	}
}

func TestFileCache_MissingFile(t *testing.T) {
	cache := NewFileCache[int](0)
	if err := cache.Set(filepath.Join(t.TempDir(), "missing"), 1); err == nil {
		t.Error("expected error for a missing file")
	}
	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("expected empty cache, got %d", cache.Size())
	}
}

func TestFileCache_EvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("go%d.mod", i))
		if err := os.WriteFile(paths[i], []byte("module example.com/a\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cache := NewFileCache[int](2)
	for i, path := range paths[:2] {
		if err := cache.Set(path, i); err != nil {
			t.Fatal(err)
		}
	}
	// touch the first entry so the second one is the oldest
	if _, ok := cache.Get(paths[0]); !ok {
		t.Fatal("expected first entry to be cached")
	}
	if err := cache.Set(paths[2], 2); err != nil {
		t.Fatal(err)
	}

	if cache.Size() != 2 {
		t.Errorf("expected size 2, got %d", cache.Size())
	}
	if _, ok := cache.Get(paths[1]); ok {
		t.Error("expected least recently used entry to be evicted")
	}
	if v, ok := cache.Get(paths[0]); !ok || v != 0 {
		t.Errorf("expected first entry to survive, got %d %v", v, ok)
	}
}
