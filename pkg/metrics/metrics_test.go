package metrics_test

import (
	"testing"

	"github.com/athlos-ai/athlos/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager with custom namespace", t, func() {
		m := metrics.New(
			metrics.WithNamespace("testns"),
			metrics.WithSubsystem("testsub"),
		)

		Convey("Then it should expose a usable registry", func() {
			So(m.Registry(), ShouldNotBeNil)
			families, err := m.Registry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeNil)
		})
	})

	Convey("Given the package-level default manager", t, func() {
		Convey("When recording metrics of every kind", func() {
			Convey("Then recording should not panic", func() {
				So(func() {
					metrics.RecordIngest("RECOVERY_METRICS")
					metrics.RecordIngestNoop("unknown_type")
					metrics.RecordProcessorLatency("RECOVERY_METRICS", 3.5)
					metrics.RecordBusPublish("DATA_UPDATED")
					metrics.UpdateBusQueueDepth(2)
					metrics.RecordAlert("CRITICAL")
					metrics.RecordAICall("generate_plan", "fallback")
					metrics.RecordAIFallback("chat")
					metrics.RecordStoreLatency("update_athlete", 1.2)
					metrics.RecordStoreOffload()
					metrics.RecordHTTPRequest("ingest", "POST", "202")
					metrics.RecordCacheRefresh()
					metrics.UpdateCachedAthletes(4)
				}, ShouldNotPanic)
			})
		})
	})
}
