package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording pipeline samples", func() {
			RecordRunStarted()
			RecordRunCompleted(2 * time.Second)
			RecordRunFailed()
			UpdateWalletsRanked(1234)
			RecordPageFetched()
			RecordPageFetchError()
			RecordPageFetchLatency(12.5)
			RecordWalletDeduped()
			RecordDeltaFetch()
			RecordDeltaFetchError()
			RecordDeltaFetchLatency(3.2)
			RecordBatchLatency(150)
			RecordProgressEvent()
			RecordStreamDropped()
			RecordHTTPRequest("stream", "GET", "200")
			RecordHTTPRequestDuration("stream", "GET", "200", 42)
			RecordErrorByComponent("reader", "page_error")
			RecordErrorByEndpoint("stream", "GET", "server_error")
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(10)
			RecordSystemGCPauseTime(0.5)

			Convey("Then the custom registry should expose gathered metrics", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
