package importer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Adapter downloads a public birth-name registry and lays it out as a
// dataset directory (data.csv in the national row format + manifest.yaml).
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "insee-prenoms-fr").
	ID() string
	// DatasetID returns the target dataset ID (e.g. "prenoms-fr").
	DatasetID() string
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the default source URL used for seeding the database.
	DefaultURL() string
	// License returns the license identifier for this source (e.g. "CC0").
	License() string
	// Import downloads the source from sourceURL and writes the dataset into
	// a subdirectory of outputDir named after DatasetID().
	Import(ctx context.Context, sourceURL, outputDir string) error
}

// ErrUnknownSource is returned by Get for an unregistered adapter ID.
var ErrUnknownSource = errors.New("unknown import source")

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.SortedFunc(maps.Values(adapters), func(a, b Adapter) int {
		return cmp.Compare(a.ID(), b.ID())
	})
}

// IDs returns the registered adapter IDs, sorted.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(adapters))
}
