package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/okian/nobeldash/internal/adapters/watcher"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher(t *testing.T) {
	Convey("Given a watched file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "laureates.csv")
		So(os.WriteFile(path, []byte("id\n"), 0o600), ShouldBeNil)

		var calls atomic.Int32
		changed := make(chan struct{}, 8)
		w, err := watcher.New(path, func(context.Context) error {
			calls.Add(1)
			changed <- struct{}{}
			return nil
		}, watcher.WithDebounce(50*time.Millisecond))
		So(err, ShouldBeNil)
		So(w.Start(context.Background()), ShouldBeNil)
		defer w.Stop()

		Convey("When it is written several times in a burst", func() {
			for i := 0; i < 3; i++ {
				So(os.WriteFile(path, []byte("id\n1\n"), 0o600), ShouldBeNil)
			}

			Convey("Then the callback runs once after the burst settles", func() {
				select {
				case <-changed:
				case <-time.After(5 * time.Second):
					t.Fatal("no change callback")
				}
				time.Sleep(200 * time.Millisecond)
				So(calls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When a sibling file changes", func() {
			So(os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o600), ShouldBeNil)

			Convey("Then the callback does not run", func() {
				time.Sleep(200 * time.Millisecond)
				So(calls.Load(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a file in a missing directory", t, func() {
		w, err := watcher.New(filepath.Join(t.TempDir(), "missing", "x.csv"), func(context.Context) error { return nil })
		So(err, ShouldBeNil)

		Convey("Then Start fails and Stop is a no-op", func() {
			So(w.Start(context.Background()), ShouldNotBeNil)
			w.Stop()
		})
	})
}
