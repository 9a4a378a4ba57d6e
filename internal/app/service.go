// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/nobeldash/internal/adapters/cache"
	"github.com/okian/nobeldash/internal/adapters/loader"
	"github.com/okian/nobeldash/internal/adapters/mq/queue"
	"github.com/okian/nobeldash/internal/adapters/mq/worker"
	"github.com/okian/nobeldash/internal/adapters/render"
	"github.com/okian/nobeldash/internal/adapters/repository"
	"github.com/okian/nobeldash/internal/adapters/watcher"
	"github.com/okian/nobeldash/internal/domain/normalize"
	"github.com/okian/nobeldash/internal/domain/views"
	"github.com/okian/nobeldash/pkg/logger"
	"github.com/okian/nobeldash/pkg/metrics"
)

const warmQueueCapacity = 32

// Output formats recorded in metrics and cache keys.
const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatPNG     = "png"
	FormatXLSX    = "xlsx"
)

// Service loads the laureate data and answers view requests against the
// current snapshot.
type Service struct {
	mu       sync.RWMutex
	reloadMu sync.Mutex // serializes loads
	statsMu  sync.Mutex // guards the reload counters

	// Core components
	store   *repository.SnapshotStore
	loader  *loader.Loader
	cache   cache.Cache
	watcher *watcher.Watcher

	// Cache warm-up; the queue stays nil when warming is off.
	warmQueue atomic.Pointer[queue.InMemoryQueue]
	warmPool  *worker.Pool

	// Configuration
	dataPath       string
	boundariesPath string
	pairing        normalize.Mode
	chartWidth     int
	chartHeight    int
	watch          bool
	warmers        int

	// State
	started     bool
	reloads     int
	failures    int
	lastFailure error

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		store:       repository.NewSnapshotStore(),
		cache:       cache.Nop{},
		dataPath:    "nobel_laureates_clean.csv",
		pairing:     normalize.Paired,
		chartWidth:  1200,
		chartHeight: 600,
		logger:      nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.loader = s.newLoader()
	return s
}

// newLoader builds the data loader with the service's current logger.
func (s *Service) newLoader() *loader.Loader {
	return loader.New(s.dataPath,
		loader.WithBoundaries(s.boundariesPath),
		loader.WithLogger(s.log().Named("loader")),
	)
}

// Start loads the data files and, if enabled, begins watching the data file.
// The service does not start when the first load fails.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
		s.reloadMu.Lock()
		s.loader = s.newLoader()
		s.reloadMu.Unlock()
	}

	s.logger.Info(ctx, "starting dashboard service...",
		logger.String("data_path", s.dataPath),
		logger.String("boundaries_path", s.boundariesPath),
		logger.String("pairing", s.pairing.String()),
		logger.String("cache", s.cache.Name()),
	)

	// Warmers start first so the initial snapshot is warmed too.
	if s.warmers > 0 && s.cache.Name() != cache.BackendNone {
		q := queue.NewInMemoryQueue(queue.WithCapacity(warmQueueCapacity))
		s.warmPool = worker.NewPool(s.warmers, q, s, worker.WithLogger(s.logger.Named("warm")))
		s.warmPool.Start(ctx)
		s.warmQueue.Store(q)
	}

	snap, err := s.Reload(ctx)
	if err != nil {
		s.stopWarmers(ctx)
		return fmt.Errorf("initial load: %w", err)
	}

	if s.watch {
		w, err := watcher.New(s.dataPath, func(ctx context.Context) error {
			_, err := s.Reload(ctx)
			return err
		}, watcher.WithLogger(s.logger.Named("watcher")))
		if err != nil {
			s.stopWarmers(ctx)
			return err
		}
		if err := w.Start(ctx); err != nil {
			s.stopWarmers(ctx)
			return err
		}
		s.watcher = w
	}

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int64("version", int64(snap.Version)),
		logger.Int("laureates", len(snap.Dataset.Laureates)),
		logger.Int("prize_rows", len(snap.Dataset.Rows)),
		logger.Bool("watching", s.watcher != nil),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping dashboard service...")

	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	s.stopWarmers(context.Background())
	if err := s.cache.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing cache", logger.Error(err))
	}

	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Reload reads the data files and publishes a new snapshot. On failure the
// previous snapshot stays current.
func (s *Service) Reload(ctx context.Context) (*repository.Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	snap, err := s.load(ctx)
	ms := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordDatasetLoad("failure", ms)
		s.recordReload(err)
		s.log().Error(ctx, "dataset load failed", logger.Error(err))
		return nil, err
	}
	metrics.RecordDatasetLoad("success", ms)
	s.recordReload(nil)
	s.enqueueWarm(ctx, snap)
	s.log().Info(ctx, "dataset loaded",
		logger.Int64("version", int64(snap.Version)),
		logger.Int("laureates", len(snap.Dataset.Laureates)),
		logger.Int("prize_rows", len(snap.Dataset.Rows)),
		logger.Int("countries", len(snap.Dataset.Countries)),
		logger.Float64("took_ms", ms),
	)
	return snap, nil
}

func (s *Service) load(ctx context.Context) (*repository.Snapshot, error) {
	res, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := views.Build(res.Laureates, normalize.New(normalize.WithMode(s.pairing)))
	if err != nil {
		return nil, err
	}
	return s.store.Publish(ds, res.Boundaries, s.dataPath)
}

func (s *Service) recordReload(err error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.reloads++
	if err != nil {
		s.failures++
		s.lastFailure = err
	}
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Nop()
	}
	return s.logger
}

// Snapshot returns the current dataset snapshot.
func (s *Service) Snapshot() (*repository.Snapshot, error) {
	snap, err := s.store.Current()
	if errors.Is(err, repository.ErrNotLoaded) {
		return nil, ErrNotReady
	}
	return snap, err
}

// Controls returns the selector options and slider bounds.
func (s *Service) Controls(_ context.Context) (views.Controls, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return views.Controls{}, err
	}
	return snap.Dataset.Controls(), nil
}

// DefaultView returns the view of kind k with its default parameters.
func (s *Service) DefaultView(_ context.Context, k views.Kind) (views.View, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Dataset.Default(k)
}

// View derives the result of v from the current snapshot.
func (s *Service) View(ctx context.Context, v views.View) (views.Result, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, snap, v, FormatJSON)
}

func (s *Service) dispatch(ctx context.Context, snap *repository.Snapshot, v views.View, format string) (views.Result, error) {
	start := time.Now()
	res, err := views.Dispatch(snap.Dataset, v)
	kind := string(v.Kind())
	if err != nil {
		if reason := views.Reason(err); reason != "" {
			metrics.RecordViewValidationError(kind, reason)
			s.log().Debug(ctx, "view rejected", logger.String("view", kind), logger.Error(err))
		}
		return nil, err
	}
	metrics.RecordViewRender(kind, format, float64(time.Since(start).Milliseconds()))
	if emptyResult(res) {
		metrics.RecordViewEmptyResult(kind)
	}
	return res, nil
}

func emptyResult(res views.Result) bool {
	switch r := res.(type) {
	case views.YearResult:
		return r.Table.Empty()
	case views.CategoryResult:
		return r.Table.Empty()
	case views.MapResult:
		return len(r.Countries) == 0
	case views.GenderResult:
		return len(r.Counts) == 0
	default:
		return false
	}
}

// MapGeoJSON returns the boundary collection annotated with prize counts and fills.
func (s *Service) MapGeoJSON(ctx context.Context) ([]byte, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	key := cache.Key(snap.Version, string(views.KindMap), FormatGeoJSON)
	return s.cached(ctx, key, func() ([]byte, error) {
		res, err := s.dispatch(ctx, snap, views.MapView{}, FormatGeoJSON)
		if err != nil {
			return nil, err
		}
		return render.Choropleth(snap.Boundaries, res.(views.MapResult))
	})
}

// GenderChart returns the stacked gender bar chart as PNG.
func (s *Service) GenderChart(ctx context.Context) ([]byte, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	key := cache.Key(snap.Version, string(views.KindGender), FormatPNG,
		strconv.Itoa(s.chartWidth), strconv.Itoa(s.chartHeight))
	return s.cached(ctx, key, func() ([]byte, error) {
		res, err := s.dispatch(ctx, snap, views.GenderView{}, FormatPNG)
		if err != nil {
			return nil, err
		}
		return render.GenderChart(res.(views.GenderResult), s.chartWidth, s.chartHeight)
	})
}

// Export returns the table of a year or category view as an XLSX workbook.
func (s *Service) Export(ctx context.Context, v views.View) ([]byte, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	var params []string
	switch v := v.(type) {
	case views.YearView:
		params = []string{strconv.Itoa(v.Year)}
	case views.CategoryView:
		params = []string{v.Category, strconv.Itoa(v.Start), strconv.Itoa(v.End)}
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotExportable, v.Kind())
	}
	key := cache.Key(snap.Version, string(v.Kind()), FormatXLSX, params...)
	return s.cached(ctx, key, func() ([]byte, error) {
		res, err := s.dispatch(ctx, snap, v, FormatXLSX)
		if err != nil {
			return nil, err
		}
		switch r := res.(type) {
		case views.YearResult:
			return render.Workbook(r.Table)
		case views.CategoryResult:
			return render.Workbook(r.Table)
		default:
			return nil, fmt.Errorf("%w: %s", ErrNotExportable, v.Kind())
		}
	})
}

// warmJobs lists the artifacts worth rendering ahead of the first request.
func warmJobs(snap *repository.Snapshot) []queue.Job {
	jobs := []queue.Job{{Version: snap.Version, View: views.GenderView{}, Format: FormatPNG}}
	if snap.Boundaries != nil {
		jobs = append(jobs, queue.Job{Version: snap.Version, View: views.MapView{}, Format: FormatGeoJSON})
	}
	if !snap.Dataset.HasYears {
		return jobs
	}
	for _, k := range []views.Kind{views.KindYear, views.KindCategory} {
		if v, err := snap.Dataset.Default(k); err == nil {
			jobs = append(jobs, queue.Job{Version: snap.Version, View: v, Format: FormatXLSX})
		}
	}
	return jobs
}

func (s *Service) enqueueWarm(ctx context.Context, snap *repository.Snapshot) {
	q := s.warmQueue.Load()
	if q == nil {
		return
	}
	for _, j := range warmJobs(snap) {
		if !q.Enqueue(ctx, j) {
			s.log().Debug(ctx, "warm-up job dropped",
				logger.String("view", string(j.View.Kind())),
				logger.String("format", j.Format),
			)
		}
	}
}

// Warm renders the artifact j names into the cache. Jobs for a replaced
// snapshot wrap worker.ErrStale.
func (s *Service) Warm(ctx context.Context, j queue.Job) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	if snap.Version != j.Version {
		return fmt.Errorf("%w: v%d, serving v%d", worker.ErrStale, j.Version, snap.Version)
	}
	switch j.Format {
	case FormatPNG:
		_, err = s.GenderChart(ctx)
	case FormatGeoJSON:
		_, err = s.MapGeoJSON(ctx)
	case FormatXLSX:
		_, err = s.Export(ctx, j.View)
	default:
		err = fmt.Errorf("%w: %s", render.ErrFormat, j.Format)
	}
	return err
}

func (s *Service) stopWarmers(ctx context.Context) {
	if s.warmPool == nil {
		return
	}
	s.warmQueue.Store(nil)
	if err := s.warmPool.Shutdown(ctx); err != nil {
		s.log().Warn(ctx, "warm-up shutdown", logger.Error(err))
	}
	s.warmPool = nil
}

// cached serves key from the cache or computes and stores it. Cache errors
// are logged and never fail the request.
func (s *Service) cached(ctx context.Context, key string, compute func() ([]byte, error)) ([]byte, error) {
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log().Warn(ctx, "cache get failed", logger.String("key", key), logger.Error(err))
	} else if ok {
		return b, nil
	}

	b, err := compute()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, b); err != nil {
		s.log().Warn(ctx, "cache set failed", logger.String("key", key), logger.Error(err))
	}
	return b, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"data_path":       s.dataPath,
		"boundaries_path": s.boundariesPath,
		"pairing":         s.pairing.String(),
		"cache":           s.cache.Name(),
		"watching":        s.watcher != nil,
		"warmers":         0,
	}
	if s.warmPool != nil {
		stats["warmers"] = s.warmPool.Size()
		stats["warmed"] = s.warmPool.Processed()
	}

	s.statsMu.Lock()
	stats["reloads"] = s.reloads
	stats["reload_failures"] = s.failures
	if s.lastFailure != nil {
		stats["last_failure"] = s.lastFailure.Error()
	}
	s.statsMu.Unlock()

	if snap, err := s.store.Current(); err == nil {
		stats["version"] = snap.Version
		stats["loaded_at"] = snap.LoadedAt.UTC().Format(time.RFC3339)
		stats["laureates"] = len(snap.Dataset.Laureates)
		stats["prize_rows"] = len(snap.Dataset.Rows)
		stats["countries"] = len(snap.Dataset.Countries)
		stats["categories"] = len(snap.Dataset.Categories)
		stats["boundaries"] = snap.Boundaries != nil
		if snap.Dataset.HasYears {
			stats["first_year"] = snap.Dataset.Years.Start
			stats["last_year"] = snap.Dataset.Years.End
		}
	}

	return stats
}
