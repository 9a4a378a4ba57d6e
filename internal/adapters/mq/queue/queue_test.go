package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/nobeldash/internal/domain/views"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	job := Job{Version: 1, View: views.GenderView{}, Format: "png"}
	if !q.Enqueue(ctx, job) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.View.Kind() != views.KindGender || got.Format != "png" || got.Version != 1 {
		t.Errorf("unexpected job %+v", got)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !q.Enqueue(ctx, Job{Version: uint64(i + 1), View: views.MapView{}}) {
			t.Fatal("expected enqueue to succeed")
		}
	}

	if q.Enqueue(ctx, Job{Version: 3, View: views.MapView{}}) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				q.Enqueue(ctx, Job{Version: uint64(id*10 + j), View: views.YearView{Year: 1901 + j}, Format: "xlsx"})
			}
		}(i)
	}
	wg.Wait()

	if l := q.Len(); l != 100 {
		t.Errorf("expected length 100, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if !q.Enqueue(ctx, Job{View: views.MapView{}}) {
		t.Fatal("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, Job{View: views.MapView{}}) {
		t.Error("expected enqueue to fail after close")
	}

	// Pending jobs drain before the channel closes.
	ch := q.Dequeue(ctx)
	n := 0
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				if n != 1 {
					t.Errorf("expected 1 drained job, got %d", n)
				}
				return
			}
			n++
		case <-timeout:
			t.Fatal("dequeue channel was not closed")
		}
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled producer may still win the select when the buffer has room;
	// a full buffer always refuses.
	q.Enqueue(context.Background(), Job{View: views.MapView{}})
	if q.Enqueue(ctx, Job{View: views.MapView{}}) {
		t.Error("expected enqueue to fail")
	}
}
