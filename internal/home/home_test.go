package home

import (
	"path/filepath"
	"testing"
)

func TestNew_ExplicitPath(t *testing.T) {
	d, err := New("/tmp/cardforge-test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if d.Path() != "/tmp/cardforge-test" {
		t.Errorf("Path() = %q, want /tmp/cardforge-test", d.Path())
	}
	if d.CacheDBPath() != filepath.Join("/tmp/cardforge-test", "cache", "cache.db") {
		t.Errorf("unexpected cache db path: %q", d.CacheDBPath())
	}
}

func TestEnsureExists(t *testing.T) {
	root := t.TempDir()
	d, err := New(filepath.Join(root, "home"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d.Exists() {
		t.Fatal("directory should not exist yet")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !d.Exists() {
		t.Error("directory should exist after EnsureExists")
	}
	if d.ConfigExists() {
		t.Error("config file should not exist in a fresh home")
	}
}
