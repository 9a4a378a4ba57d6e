package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/nobeldash/internal/adapters/mq/queue"
	"github.com/okian/nobeldash/internal/adapters/mq/worker"
	"github.com/okian/nobeldash/internal/domain/views"
	"github.com/okian/nobeldash/pkg/logger"
)

// Mock implementations for testing.
type mockQueue struct {
	jobs chan queue.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type mockRenderer struct {
	mu     sync.Mutex
	seen   []queue.Job
	errs   map[views.Kind]error
	panics map[views.Kind]any
}

func newMockRenderer() *mockRenderer {
	return &mockRenderer{errs: make(map[views.Kind]error), panics: make(map[views.Kind]any)}
}

func (m *mockRenderer) Warm(_ context.Context, j queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, j)
	if v, ok := m.panics[j.View.Kind()]; ok {
		panic(v)
	}
	return m.errs[j.View.Kind()]
}

func (m *mockRenderer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		q := newMockQueue()
		r := newMockRenderer()
		w := worker.NewInMemoryWorker(q, r, worker.WithName("w1"), worker.WithLogger(logger.Nop()))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When jobs arrive", func() {
			q.jobs <- queue.Job{Version: 1, View: views.GenderView{}, Format: "png"}
			q.jobs <- queue.Job{Version: 1, View: views.YearView{Year: 1901}, Format: "xlsx"}

			convey.Convey("Then each job is rendered once", func() {
				convey.So(waitFor(func() bool { return r.count() == 2 }), convey.ShouldBeTrue)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a job fails or is stale", func() {
			r.errs[views.KindMap] = errors.New("boom")
			r.errs[views.KindCategory] = worker.ErrStale
			q.jobs <- queue.Job{Version: 1, View: views.MapView{}, Format: "geojson"}
			q.jobs <- queue.Job{Version: 1, View: views.CategoryView{}, Format: "xlsx"}
			q.jobs <- queue.Job{Version: 1, View: views.GenderView{}, Format: "png"}

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return r.count() == 3 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the renderer panics on a job", func() {
			r.panics[views.KindGender] = "runtime error: makeslice: len out of range"
			q.jobs <- queue.Job{Version: 1, View: views.GenderView{}, Format: "png"}
			q.jobs <- queue.Job{Version: 1, View: views.YearView{Year: 1901}, Format: "xlsx"}

			convey.Convey("Then the panic is contained and later jobs still run", func() {
				convey.So(waitFor(func() bool { return r.count() == 2 }), convey.ShouldBeTrue)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue closes", func() {
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then the worker stops on its own", func() {
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		r := newMockRenderer()
		p := worker.NewPool(3, q, r, worker.WithLogger(logger.Nop()))
		convey.So(p.Size(), convey.ShouldEqual, 3)

		ctx := context.Background()
		p.Start(ctx)

		convey.Convey("When jobs are enqueued", func() {
			for y := 1901; y < 1911; y++ {
				convey.So(q.Enqueue(ctx, queue.Job{Version: 2, View: views.YearView{Year: y}, Format: "xlsx"}), convey.ShouldBeTrue)
			}

			convey.Convey("Then all are processed and shutdown is clean", func() {
				convey.So(waitFor(func() bool { return p.Processed() == 10 }), convey.ShouldBeTrue)
				convey.So(r.count(), convey.ShouldEqual, 10)
				convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool whose renderer panics", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		r := newMockRenderer()
		r.panics[views.KindGender] = errors.New("boom")
		p := worker.NewPool(1, q, r, worker.WithLogger(logger.Nop()))

		ctx := context.Background()
		p.Start(ctx)
		convey.So(q.Enqueue(ctx, queue.Job{Version: 1, View: views.GenderView{}, Format: "png"}), convey.ShouldBeTrue)
		convey.So(q.Enqueue(ctx, queue.Job{Version: 1, View: views.MapView{}, Format: "geojson"}), convey.ShouldBeTrue)

		convey.Convey("Then both jobs count as processed and the pool shuts down", func() {
			convey.So(waitFor(func() bool { return p.Processed() == 2 }), convey.ShouldBeTrue)
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a pool with a non-positive size", t, func() {
		p := worker.NewPool(0, newMockQueue(), newMockRenderer())

		convey.Convey("Then the default size is used", func() {
			convey.So(p.Size(), convey.ShouldEqual, 2)
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}
