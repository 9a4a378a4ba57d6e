// Package repository holds the published dataset snapshot.
package repository

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/okian/nobeldash/internal/domain/views"
	"github.com/okian/nobeldash/pkg/metrics"
)

// Snapshot is one immutable load of the data files. Readers may hold it for
// as long as they like; a reload publishes a new one instead of mutating it.
type Snapshot struct {
	Version    uint64
	LoadedAt   time.Time
	Source     string
	Dataset    *views.Dataset
	Boundaries *geojson.FeatureCollection
}

// Store provides read access to the current snapshot and publishes new ones.
type Store interface {
	// Current returns the latest snapshot, or ErrNotLoaded before the first Publish.
	Current() (*Snapshot, error)
	// Publish installs a new snapshot with the next version number.
	Publish(ds *views.Dataset, boundaries *geojson.FeatureCollection, source string) (*Snapshot, error)
}

// SnapshotStore is a Store backed by an atomic pointer.
type SnapshotStore struct {
	snapshot atomic.Pointer[Snapshot]
	mu       sync.Mutex // serializes publishers so versions are strictly increasing
	version  uint64
	now      func() time.Time
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current implements Store.Current.
func (s *SnapshotStore) Current() (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Publish implements Store.Publish.
func (s *SnapshotStore) Publish(ds *views.Dataset, boundaries *geojson.FeatureCollection, source string) (*Snapshot, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	snap := &Snapshot{
		Version:    s.version,
		LoadedAt:   s.now(),
		Source:     source,
		Dataset:    ds,
		Boundaries: boundaries,
	}
	s.snapshot.Store(snap)

	metrics.UpdateDatasetSize(len(ds.Laureates), len(ds.Rows), len(ds.Countries))
	metrics.UpdateDatasetVersion(snap.Version)
	return snap, nil
}
