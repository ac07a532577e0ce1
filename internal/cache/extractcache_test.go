package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExtractCache_RoundTrip(t *testing.T) {
	c := &ExtractCache{Dir: t.TempDir()}
	ctx := context.Background()
	data := []byte("%PDF fake bytes")

	if _, ok := c.Load(ctx, data); ok {
		t.Fatalf("unexpected hit on empty cache")
	}
	if err := c.Save(ctx, "report.pdf", data, "Revenue $5"); err != nil {
		t.Fatalf("save: %v", err)
	}
	text, ok := c.Load(ctx, data)
	if !ok || text != "Revenue $5" {
		t.Fatalf("load: got %q ok=%v", text, ok)
	}
	meta, err := c.LoadMeta(ctx, data)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.Name != "report.pdf" || meta.Chars != len("Revenue $5") {
		t.Fatalf("meta: %+v", meta)
	}
	if meta.SHA256 != Key(data) {
		t.Fatalf("meta digest mismatch: %+v", meta)
	}
}

func TestExtractCache_MissConfigured(t *testing.T) {
	var c *ExtractCache
	if _, ok := c.Load(context.Background(), []byte("x")); ok {
		t.Fatalf("nil cache should miss")
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	c := &ExtractCache{Dir: dir}
	ctx := context.Background()
	if err := c.Save(ctx, "old.txt", []byte("old"), "old text"); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Backdate the sidecar.
	metaPath := filepath.Join(dir, Key([]byte("old"))+".meta.json")
	old := `{"name":"old.txt","sha256":"x","chars":8,"saved_at":"2000-01-01T00:00:00Z"}`
	if err := os.WriteFile(metaPath, []byte(old), 0o644); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	removed, err := PurgeByAge(dir, time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed: got %d", removed)
	}
	if _, ok := c.Load(ctx, []byte("old")); ok {
		t.Fatalf("entry should have been purged")
	}
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := &ExtractCache{Dir: dir}
	if err := c.Save(context.Background(), "a", []byte("a"), "text"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("dir should exist after clear: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dir not empty after clear: %v", entries)
	}
}
