package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "nobeldash")
				So(manager.subsystem, ShouldEqual, "dashboard")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.constLabels["env"], ShouldEqual, "test")
			})

			Convey("And the collectors should be registered on the given registry", func() {
				manager.datasetReloads.WithLabelValues("ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_namespace_test_subsystem_dataset_reloads_total"], ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "nobeldash")
				So(manager.subsystem, ShouldEqual, "dashboard")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording dataset metrics", func() {
			UpdateDatasetSize(10, 12, 4)
			UpdateDatasetVersion(3)
			before := testutil.ToFloat64(globalManager.datasetReloads.WithLabelValues("ok"))
			RecordDatasetLoad("ok", 12.5)

			Convey("Then the gauges and counters should reflect them", func() {
				So(testutil.ToFloat64(globalManager.datasetLaureates), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.datasetPrizeRows), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.datasetCountries), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.datasetVersion), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.datasetReloads.WithLabelValues("ok")), ShouldEqual, before+1)
			})
		})

		Convey("When recording view metrics", func() {
			before := testutil.ToFloat64(globalManager.viewRenders.WithLabelValues("year", "json"))
			RecordViewRender("year", "json", 1.2)
			RecordViewValidationError("category", "invalid_year_range")
			RecordViewEmptyResult("category")

			Convey("Then the counters should increase", func() {
				So(testutil.ToFloat64(globalManager.viewRenders.WithLabelValues("year", "json")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.viewValidationErrors.WithLabelValues("category", "invalid_year_range")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.viewEmptyResults.WithLabelValues("category")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording cache, HTTP and system metrics", func() {
			So(func() {
				RecordCacheOp("memory", "hit")
				RecordCacheOp("redis", "miss")
				UpdateWarmQueueSize(3)
				RecordWarmJob("gender", "ok", 8.0)
				RecordHTTPRequest("/api/views/year", "GET", "200")
				RecordHTTPRequestDuration("/api/views/year", "GET", "200", 3.0)
				RecordErrorByEndpoint("/api/views/category", "GET", "client_error")
				RecordErrorByType("client_error", "medium")
				UpdateSystemMemoryUsage(1024 * 1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		done := make(chan bool, 10)
		before := testutil.ToFloat64(globalManager.viewRenders.WithLabelValues("gender", "png"))

		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordViewRender("gender", "png", float64(j))
					RecordHTTPRequest("/test", "GET", "200")
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		Convey("Then every observation should be counted", func() {
			So(testutil.ToFloat64(globalManager.viewRenders.WithLabelValues("gender", "png")), ShouldEqual, before+1000)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordDatasetLoad("error", 1)
		families, err := GetRegistry().Gather()

		Convey("Then it should expose service metrics only", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(f.GetName(), ShouldStartWith, "nobeldash_dashboard_")
			}
		})
	})
}
