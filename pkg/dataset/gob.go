package dataset

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
)

// cacheEntry is the on-disk form of a normalized dataset. It is only valid
// for the data file and manifest it was built from.
type cacheEntry struct {
	Fingerprint Fingerprint
	Table       *names.Table
	Report      names.NormalizeReport
}

func cachePath(cacheDir, id string) string {
	return filepath.Join(cacheDir, id+".gob")
}

// loadCache returns the cached table when its fingerprint matches fp.
func loadCache(path string, fp Fingerprint) (*cacheEntry, bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open cache file: %w", err)
	}
	defer f.Close()

	var e cacheEntry
	if err := gob.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("decode cache: %w", err)
	}
	if e.Fingerprint != fp || e.Table == nil {
		return nil, false, nil
	}
	return &e, true, nil
}

// saveCache writes e atomically so a concurrent reader never sees a
// partial file.
func saveCache(path string, e *cacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	if err := gob.NewEncoder(tmp).Encode(e); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
