package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/hazyhaar/prenoms-registry/pkg/source"
)

// Fingerprint identifies one version of a dataset: its data file and the
// manifest that says how to read it.
type Fingerprint struct {
	Size            int64
	ModTime         int64
	ManifestSize    int64
	ManifestModTime int64
}

func fingerprint(dataPath, manifestPath string) (Fingerprint, error) {
	fi, err := os.Stat(dataPath)
	if err != nil {
		return Fingerprint{}, err
	}
	mi, err := os.Stat(manifestPath)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{
		Size:            fi.Size(),
		ModTime:         fi.ModTime().UnixNano(),
		ManifestSize:    mi.Size(),
		ManifestModTime: mi.ModTime().UnixNano(),
	}, nil
}

// Snapshot is one loaded version of a dataset. It is shared by every reader
// and never modified; a reload replaces it.
type Snapshot struct {
	Manifest    *source.Manifest
	Table       *names.Table
	Totals      []names.YearlyTotal
	Classes     names.Classifications
	Report      names.NormalizeReport
	Fingerprint Fingerprint
	LoadedAt    time.Time
	FromCache   bool
}

// Store owns the current snapshot of one dataset directory.
type Store struct {
	dir      string
	cacheDir string
	logger   *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// OpenStore loads the dataset in dir. cacheDir may be empty to disable the
// snapshot cache.
func OpenStore(dir, cacheDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{dir: dir, cacheDir: cacheDir, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the dataset ID of the current snapshot.
func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Manifest.ID
}

// Current returns the loaded snapshot without checking the source file.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Snapshot returns the current snapshot, reloading it first when the data
// file or the manifest changed since it was loaded. If the reload fails the previous snapshot
// is kept and the error is logged.
func (s *Store) Snapshot() *Snapshot {
	cur := s.Current()
	fp, err := fingerprint(s.dataPath(cur.Manifest), s.manifestPath())
	if err != nil || fp == cur.Fingerprint {
		return cur
	}

	s.logger.Info("dataset source changed, reloading", "dataset", cur.Manifest.ID)
	if err := s.Reload(); err != nil {
		s.logger.Error("dataset reload failed", "dataset", cur.Manifest.ID, "error", err)
		return cur
	}
	return s.Current()
}

// Reload reads the manifest and data file again and swaps the snapshot in.
func (s *Store) Reload() error {
	manifest, err := source.LoadManifest(s.manifestPath())
	if err != nil {
		return err
	}
	snap, err := s.load(manifest)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", manifest.ID, err)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	first, last, _ := snap.Table.YearSpan()
	s.logger.Info("dataset loaded",
		"dataset", manifest.ID,
		"records", len(snap.Table.Records),
		"names", snap.Table.NameCount(),
		"first_year", first,
		"last_year", last,
		"dropped", snap.Report.Dropped(),
		"cached", snap.FromCache,
	)
	return nil
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.dir, "manifest.yaml")
}

func (s *Store) dataPath(m *source.Manifest) string {
	return filepath.Join(s.dir, m.DataFile)
}

func (s *Store) load(m *source.Manifest) (*Snapshot, error) {
	path := s.dataPath(m)
	fp, err := fingerprint(path, s.manifestPath())
	if err != nil {
		return nil, fmt.Errorf("stat dataset files: %w", err)
	}

	snap := &Snapshot{Manifest: m, Fingerprint: fp, LoadedAt: time.Now()}

	if s.cacheDir != "" {
		e, ok, err := loadCache(cachePath(s.cacheDir, m.ID), fp)
		if err != nil {
			s.logger.Warn("ignoring unreadable dataset cache", "dataset", m.ID, "error", err)
		}
		if ok {
			snap.Table = e.Table
			snap.Report = e.Report
			snap.FromCache = true
		}
	}

	if snap.Table == nil {
		raws, err := source.ReadFile(path, m.Format)
		if err != nil {
			return nil, err
		}
		tbl, _, rep, err := names.NormalizeAndAggregate(raws, m.Format.NormalizeOptions())
		if err != nil {
			return nil, err
		}
		snap.Table = tbl
		snap.Report = rep
		if rep.Dropped() > 0 {
			s.logger.Warn("rows dropped during normalization",
				"dataset", m.ID,
				"sentinel_year", rep.SentinelYear,
				"missing_field", rep.MissingField,
				"malformed", rep.Malformed,
			)
		}
		if s.cacheDir != "" {
			if err := saveCache(cachePath(s.cacheDir, m.ID), &cacheEntry{Fingerprint: fp, Table: tbl, Report: rep}); err != nil {
				s.logger.Warn("dataset cache not written", "dataset", m.ID, "error", err)
			}
		}
	}

	snap.Totals = names.YearlyTotals(snap.Table, nil)
	snap.Classes = names.ClassifySexes(snap.Table)
	return snap, nil
}
