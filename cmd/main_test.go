package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/nobeldash/internal/adapters/cache"
	"github.com/okian/nobeldash/internal/adapters/render"
	"github.com/okian/nobeldash/internal/config"
	"github.com/okian/nobeldash/internal/domain/views"
	"github.com/okian/nobeldash/pkg/logger"
)

const testData = "../internal/adapters/loader/testdata/laureates.csv"

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestConfigLoading(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("NOBELDASH_ADDR", ":8080")
			_ = os.Setenv("NOBELDASH_PAIRING", "cross")
			defer func() {
				_ = os.Unsetenv("NOBELDASH_ADDR")
				_ = os.Unsetenv("NOBELDASH_PAIRING")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := loadConfig(context.Background(), &rootFlags{})
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Pairing, convey.ShouldEqual, config.PairingCross)
			})

			convey.Convey("And flags take precedence", func() {
				cfg, err := loadConfig(context.Background(), &rootFlags{
					dataPath: testData,
					pairing:  config.PairingPaired,
					logLevel: "debug",
				})
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataPath, convey.ShouldEqual, testData)
				convey.So(cfg.Pairing, convey.ShouldEqual, config.PairingPaired)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When a flag is invalid", func() {
			cfg, err := loadConfig(context.Background(), &rootFlags{pairing: "zigzag"})

			convey.Convey("Then loading fails validation", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestCacheSelection(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("Then each backend can be built", func() {
			cfg.CacheBackend = config.CacheNone
			c, err := newCache(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Name(), convey.ShouldEqual, cache.BackendNone)

			cfg.CacheBackend = config.CacheMemory
			c, err = newCache(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Name(), convey.ShouldEqual, cache.BackendMemory)

			mr := miniredis.RunT(t)
			cfg.CacheBackend = config.CacheRedis
			cfg.RedisAddr = mr.Addr()
			c, err = newCache(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Name(), convey.ShouldEqual, cache.BackendRedis)
			convey.So(c.Close(), convey.ShouldBeNil)
		})
	})
}

func TestServiceCreation(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := config.New()
		cfg.DataPath = testData

		convey.Convey("Then the service is created", func() {
			svc, err := newService(cfg, logger.Nop(), cache.Nop{}, false)
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc, convey.ShouldNotBeNil)
		})

		convey.Convey("And an unknown pairing is rejected", func() {
			cfg.Pairing = "zigzag"
			_, err := newService(cfg, logger.Nop(), cache.Nop{}, false)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.DataPath = testData
		svc, err := newService(cfg, logger.Nop(), cache.NewMemory(), false)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, svc, logger.Nop())

		convey.Convey("Then the page, docs and API are all mounted", func() {
			for _, path := range []string{"/", "/healthz", "/api/views", "/api/views/year?year=1903", "/openapi.yaml", "/api-docs"} {
				rr := httptest.NewRecorder()
				h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(rr.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestRenderCommand(t *testing.T) {
	convey.Convey("Given the render command", t, func() {
		convey.Convey("When rendering a year as text", func() {
			out, err := execute("render", "year", "--year", "1903", "--data", testData)

			convey.Convey("Then the caption and laureates are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Laureates in 1903:")
				convey.So(out, convey.ShouldContainSubstring, "Curie")
			})
		})

		convey.Convey("When rendering a view by its title as json", func() {
			out, err := execute("render", "Laureates by Gender", "--format", "json", "--data", testData)

			convey.Convey("Then the counts are encoded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"genders"`)
			})
		})

		convey.Convey("When the category range is inverted", func() {
			_, err := execute("render", "category", "--category", "physics", "--start", "1910", "--end", "1905", "--data", testData)

			convey.Convey("Then the range message is reported", func() {
				convey.So(errors.Is(err, views.ErrInvalidYearRange), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, views.MsgInvalidYearRange)
			})
		})

		convey.Convey("When writing the gender chart to a file", func() {
			path := filepath.Join(t.TempDir(), "gender.png")
			_, err := execute("render", "gender", "-f", "png", "-o", path, "--data", testData)

			convey.Convey("Then a PNG is written", func() {
				convey.So(err, convey.ShouldBeNil)
				b, rerr := os.ReadFile(path)
				convey.So(rerr, convey.ShouldBeNil)
				convey.So(bytes.HasPrefix(b, []byte("\x89PNG")), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a format does not fit the view", func() {
			_, err := execute("render", "map", "-f", "png", "--data", testData)
			convey.So(errors.Is(err, render.ErrFormat), convey.ShouldBeTrue)
		})

		convey.Convey("When the map has no boundaries", func() {
			_, err := execute("render", "map", "-f", "geojson", "--data", testData)
			convey.So(errors.Is(err, render.ErrNoBoundaries), convey.ShouldBeTrue)
		})

		convey.Convey("When the view is unknown", func() {
			_, err := execute("render", "pie", "--data", testData)
			convey.So(errors.Is(err, views.ErrUnknownView), convey.ShouldBeTrue)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then it returns when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("And a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
