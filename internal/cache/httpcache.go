package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HTTPEntry captures enough metadata to support conditional revalidation.
type HTTPEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// HTTPCache stores downloaded pages on disk as <key>.meta.json and <key>.body
// where key is sha256(url). No eviction policy; see PurgeByAge.
type HTTPCache struct {
	Dir         string
	StrictPerms bool
}

func (c *HTTPCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *HTTPCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// LoadMeta returns entry metadata if present.
func (c *HTTPCache) LoadMeta(_ context.Context, url string) (*HTTPEntry, error) {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(digest(url)))
	if err != nil {
		return nil, err
	}
	var e HTTPEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadBody returns the cached body if present.
func (c *HTTPCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(digest(url)))
}

// Save stores a new entry. The body is written before the metadata so a
// present meta file always has a body next to it.
func (c *HTTPCache) Save(_ context.Context, url string, contentType string, etag string, lastModified string, body []byte) error {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	key := digest(url)
	mode := fileMode(c.StrictPerms)
	if err := writeAtomic(c.bodyPath(key), body, mode); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta, err := json.Marshal(HTTPEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := writeAtomic(c.metaPath(key), meta, mode); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}
