package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "pacer")
				So(manager.subsystem, ShouldEqual, "recommend")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-ns"),
				WithSubsystem("test-sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then options should be applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-ns")
				So(manager.subsystem, ShouldEqual, "test-sub")
				So(len(manager.histogramBuckets), ShouldEqual, 3)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording tick and session metrics", func() {
			Convey("Then helpers should not panic", func() {
				So(func() {
					RecordTick("warmup")
					RecordTick("full")
					RecordTickLatency(12.5)
					RecordSamplesIngested(3)
					RecordTickError("validation")
					RecordPredictionError()
					UpdateActiveSessions(4)
					RecordSessionCreated()
					RecordSessionEvicted()
					RecordSessionArchived()
					RecordArchiveError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			Convey("Then helpers should not panic", func() {
				So(func() {
					RecordHTTPRequest("tick", "POST", "200")
					RecordHTTPRequestDuration("tick", "POST", "200", 3.2)
					RecordErrorByEndpoint("tick", "POST", "client_error")
					RecordErrorByType("client_error", "medium")
					RecordErrorLatency("http", "client_error", 1.0)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.4)
				}, ShouldNotPanic)
			})
		})

		Convey("When fetching the registry", func() {
			Convey("Then it should be non-nil", func() {
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}
