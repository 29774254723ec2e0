package cache

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// SummaryCache stores model summaries keyed by backend, model and prompt.
type SummaryCache struct {
	Dir         string
	StrictPerms bool
}

// KeyFrom builds a cache key from model and the NFC form of prompt, so
// canonically equivalent prompts share an entry.
func KeyFrom(model string, prompt string) string {
	return digest(model, norm.NFC.String(prompt))
}

func (c *SummaryCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns cached bytes if present. A miss is not an error.
func (c *SummaryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false, nil
	}
	return b, true, nil
}

// Save writes bytes to cache.
func (c *SummaryCache) Save(_ context.Context, key string, data []byte) error {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	return writeAtomic(c.pathFor(key), data, fileMode(c.StrictPerms))
}
