package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
)

// Subdirectories of the process cache directory.
const (
	PagesSubdir     = "pages"
	SummariesSubdir = "summaries"
)

func ensureDir(dir string, strict bool) error {
	if dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if strict {
		perm = 0o700
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	if strict {
		if info, err := os.Stat(dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(dir, 0o700)
		}
	}
	return nil
}

func fileMode(strict bool) os.FileMode {
	if strict {
		return 0o600
	}
	return 0o644
}

// writeAtomic writes data to a unique sibling temp file and renames it into
// place. Concurrent writers of the same path each publish a complete file.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Chmod(mode); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func digest(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte("\n\n"))
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
