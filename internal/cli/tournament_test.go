package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFindCatalogs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := findCatalogs(dir)
	if err != nil {
		t.Fatalf("findCatalogs() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("found %d catalogs, want 2", len(got))
	}
	if filepath.Base(got[0]) != "a.json" || filepath.Base(got[1]) != "b.json" {
		t.Errorf("catalogs not sorted: %v", got)
	}
}

func TestFindCatalogsEmpty(t *testing.T) {
	if _, err := findCatalogs(t.TempDir()); err == nil {
		t.Error("expected error for directory without catalogs")
	}
}

func TestFindCatalogsMissingDir(t *testing.T) {
	if _, err := findCatalogs(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	st, err := c.newStore(context.Background(), "")
	if err != nil {
		t.Fatalf("newStore() error: %v", err)
	}
	defer st.Close(context.Background())

	if _, err := st.List(context.Background(), 10); err != nil {
		t.Errorf("memory store should list: %v", err)
	}
}
