package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry records provenance for one cached extraction.
type Entry struct {
	Name    string    `json:"name"`
	SHA256  string    `json:"sha256"`
	Chars   int       `json:"chars"`
	SavedAt time.Time `json:"saved_at"`
}

// ExtractCache stores extracted text blobs on disk as <key>.txt with a
// <key>.meta.json sidecar, where key is the SHA-256 of the raw document
// bytes. Re-uploading an identical document therefore skips extraction
// entirely. The cache is deterministic and has no eviction policy beyond
// PurgeByAge.
type ExtractCache struct {
	Dir string
}

// Key returns the content address for raw document bytes.
func Key(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func (c *ExtractCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *ExtractCache) textPath(key string) string { return filepath.Join(c.Dir, key+".txt") }
func (c *ExtractCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }

// Load returns the cached extraction for the given document bytes, if any.
func (c *ExtractCache) Load(_ context.Context, data []byte) (string, bool) {
	if c == nil || c.Dir == "" {
		return "", false
	}
	b, err := os.ReadFile(c.textPath(Key(data)))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Save stores an extracted blob under the content address of data. The text
// is written before the meta sidecar, so a crash can leave a text file
// without meta but never the reverse.
func (c *ExtractCache) Save(_ context.Context, name string, data []byte, text string) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := Key(data)
	if err := os.WriteFile(c.textPath(key), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	meta := Entry{
		Name:    name,
		SHA256:  key,
		Chars:   len(text),
		SavedAt: time.Now().UTC(),
	}
	f, err := os.Create(c.metaPath(key))
	if err != nil {
		return fmt.Errorf("create meta: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(&meta); err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	return nil
}

// LoadMeta returns the provenance sidecar for the given document bytes.
func (c *ExtractCache) LoadMeta(_ context.Context, data []byte) (*Entry, error) {
	if c == nil || c.Dir == "" {
		return nil, errors.New("cache dir not configured")
	}
	b, err := os.ReadFile(c.metaPath(Key(data)))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
