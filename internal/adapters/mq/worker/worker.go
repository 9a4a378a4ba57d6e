// Package worker renders queued warm-up jobs so the cache holds the common
// artifacts of a fresh snapshot before the first request asks for them.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/nobeldash/internal/adapters/mq/queue"
	"github.com/okian/nobeldash/pkg/logger"
	"github.com/okian/nobeldash/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Job outcomes recorded in metrics.
const (
	OutcomeOK    = "ok"
	OutcomeStale = "stale"
	OutcomeError = "error"
)

// Renderer produces and caches the artifact a job names.
// It returns an error wrapping ErrStale when the job's snapshot was replaced.
type Renderer interface {
	Warm(ctx context.Context, j queue.Job) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until its context ends or it is shut down.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for in-process jobs.
type InMemoryWorker struct {
	queue    Queue
	renderer Renderer
	name     string

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	// processed counts jobs handed to the renderer.
	processed *atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, r Renderer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		renderer:  r,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		processed: &atomic.Int64{},
		logger:    logger.Nop(),
	}

	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			err := w.process(ctx, j)
			switch {
			case errors.Is(err, ErrPanic):
				w.logger.Error(ctx, "warm-up job panicked", logger.Error(err))
			case err != nil:
				w.logger.Warn(ctx, "warm-up job failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) error {
	start := time.Now()
	view := string(j.View.Kind())
	err := w.warm(ctx, j)
	ms := float64(time.Since(start).Milliseconds())
	w.processed.Add(1)

	switch {
	case err == nil:
		metrics.RecordWarmJob(view, OutcomeOK, ms)
		w.logger.Debug(ctx, "warmed",
			logger.String("view", view),
			logger.String("format", j.Format),
			logger.Int64("version", int64(j.Version)),
		)
		return nil
	case errors.Is(err, ErrStale):
		metrics.RecordWarmJob(view, OutcomeStale, ms)
		return nil
	default:
		metrics.RecordWarmJob(view, OutcomeError, ms)
		metrics.RecordErrorByType("warm_error", "low")
		return fmt.Errorf("warm %s/%s v%d: %w", view, j.Format, j.Version, err)
	}
}

// warm calls the renderer, turning a panic into an error wrapping ErrPanic.
func (w *InMemoryWorker) warm(ctx context.Context, j queue.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return w.renderer.Warm(ctx, j)
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	cancel    context.CancelFunc
	processed atomic.Int64

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. workerCount < 1 uses the default.
func NewPool(workerCount int, q Queue, r Renderer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("warmer-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, r, wopts...)
		w.processed = &p.processed
		p.workers[i] = w
	}
	if len(p.workers) > 0 {
		p.logger = p.workers[0].logger
	}
	return p
}

// Start starts all workers. They stop when ctx ends or on Shutdown.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs handed to the renderer so far.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Shutdown closes the queue, stops every worker and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	if p.cancel == nil {
		return nil // never started
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for _, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.name, err))
		}
	}
	p.cancel()
	return errors.Join(errs...)
}
