package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents, then recreates it empty.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeByAge removes cache files under dir whose modification time is older
// than maxAge. A page's body and metadata are removed together. It returns
// the number of entries removed; a missing dir is not an error.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 || strings.TrimSpace(dir) == "" {
		return 0, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	now := time.Now()
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, ".body") || strings.HasSuffix(name, ".tmp") {
			return nil
		}
		if !strings.HasSuffix(name, ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) <= maxAge {
			return nil
		}
		removed++
		_ = os.Remove(path)
		if strings.HasSuffix(name, ".meta.json") {
			_ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
		}
		return nil
	})
	return removed, err
}
