package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrUnknownDataset is returned by Get for an ID that is not loaded.
var ErrUnknownDataset = errors.New("unknown dataset")

// Registry holds every dataset found under one directory.
type Registry struct {
	mu          sync.RWMutex
	stores      map[string]*Store
	datasetsDir string
	cacheDir    string
	logger      *slog.Logger
}

// NewRegistry creates an empty registry for datasetsDir.
func NewRegistry(datasetsDir, cacheDir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		stores:      make(map[string]*Store),
		datasetsDir: datasetsDir,
		cacheDir:    cacheDir,
		logger:      logger,
	}
}

// Load scans the datasets directory and loads every subdirectory that holds
// a manifest.yaml.
func (r *Registry) Load() error {
	entries, err := os.ReadDir(r.datasetsDir)
	if err != nil {
		return fmt.Errorf("read datasets dir %s: %w", r.datasetsDir, err)
	}

	stores := make(map[string]*Store)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(r.datasetsDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "manifest.yaml")); err != nil {
			continue
		}
		s, err := OpenStore(dir, r.cacheDir, r.logger)
		if err != nil {
			return fmt.Errorf("load dataset %s: %w", entry.Name(), err)
		}
		stores[s.ID()] = s
	}

	r.mu.Lock()
	r.stores = stores
	r.mu.Unlock()
	return nil
}

// Reload reloads all datasets from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Get returns the store for a dataset ID.
func (r *Registry) Get(id string) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	return s, nil
}

// Info is the public description of a loaded dataset.
type Info struct {
	ID           string    `json:"id"`
	Version      string    `json:"version"`
	Jurisdiction string    `json:"jurisdiction"`
	Source       string    `json:"source"`
	SourceURL    string    `json:"source_url,omitempty"`
	License      string    `json:"license"`
	Records      int       `json:"records"`
	Names        int       `json:"names"`
	FirstYear    int       `json:"first_year"`
	LastYear     int       `json:"last_year"`
	Dropped      int       `json:"dropped_rows"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Describe summarises a snapshot.
func Describe(snap *Snapshot) Info {
	first, last, _ := snap.Table.YearSpan()
	m := snap.Manifest
	return Info{
		ID:           m.ID,
		Version:      m.Version,
		Jurisdiction: m.Jurisdiction,
		Source:       m.Source,
		SourceURL:    m.SourceURL,
		License:      m.License,
		Records:      len(snap.Table.Records),
		Names:        snap.Table.NameCount(),
		FirstYear:    first,
		LastYear:     last,
		Dropped:      snap.Report.Dropped(),
		LoadedAt:     snap.LoadedAt,
	}
}

// List returns every loaded dataset sorted by ID.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.stores))
	for _, s := range r.stores {
		infos = append(infos, Describe(s.Current()))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Count returns the number of loaded datasets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}
