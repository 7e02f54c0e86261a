package simulation_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/athlos-ai/athlos/internal/adapters/notify"
	"github.com/athlos-ai/athlos/internal/adapters/store"
	service "github.com/athlos-ai/athlos/internal/app"
	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/internal/eventbus"
	"github.com/athlos-ai/athlos/internal/processor"
	"github.com/athlos-ai/athlos/internal/simulation"
	"github.com/athlos-ai/athlos/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestScriptedRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given the full ingestion stack and one seeded athlete", t, func() {
		st := store.NewMemoryStore()
		So(st.Seed(&model.Athlete{ID: "sim-1", Name: "Demo", Status: model.StatusOptimal, HRV: 60}), ShouldBeNil)
		bus := eventbus.New()
		defer bus.Close()

		var mu sync.Mutex
		var completions []eventbus.Event
		bus.Subscribe(model.EventSimulationComplete, func(ctx context.Context, e eventbus.Event) {
			mu.Lock()
			completions = append(completions, e)
			mu.Unlock()
		})

		registry, err := processor.NewRegistry(&notify.Recorder{})
		So(err, ShouldBeNil)
		svc := service.New(st, registry, bus, nil)
		So(svc.Start(ctx), ShouldBeNil)

		runner := simulation.New(svc, bus, "sim-1")

		Convey("When the default script runs", func() {
			err := runner.Run(ctx)
			dctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			So(bus.Drain(dctx), ShouldBeNil)

			Convey("Then it completes and reports success", func() {
				So(err, ShouldBeNil)
				mu.Lock()
				defer mu.Unlock()
				So(len(completions), ShouldEqual, 1)
				So(completions[0].Data["success"], ShouldEqual, true)
				So(completions[0].Data["steps"], ShouldEqual, 8)
			})

			Convey("And the athlete carries the whole arc", func() {
				a, gerr := st.GetAthlete(ctx, "sim-1")
				So(gerr, ShouldBeNil)
				So(len(a.LoadHistory), ShouldEqual, 5)
				So(len(a.TherapyLog), ShouldEqual, 1)
				So(len(a.Injuries), ShouldEqual, 1)
				So(a.Injuries[0].Status, ShouldEqual, model.InjuryResolved)
				So(a.Status, ShouldEqual, model.StatusOptimal)
			})
		})
	})

	Convey("Given a failing step in the script", t, func() {
		st := store.NewMemoryStore()
		So(st.Seed(&model.Athlete{ID: "sim-1", Name: "Demo", Status: model.StatusOptimal}), ShouldBeNil)
		bus := eventbus.New()
		defer bus.Close()

		var mu sync.Mutex
		var completions []eventbus.Event
		bus.Subscribe(model.EventSimulationComplete, func(ctx context.Context, e eventbus.Event) {
			mu.Lock()
			completions = append(completions, e)
			mu.Unlock()
		})

		registry, err := processor.NewRegistry(&notify.Recorder{})
		So(err, ShouldBeNil)

		failing := &failingIngestor{failAt: 2, svc: mustService(t, st, registry, bus)}
		runner := simulation.New(failing, bus, "sim-1")

		Convey("When the script runs", func() {
			err := runner.Run(ctx)
			dctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			So(bus.Drain(dctx), ShouldBeNil)

			Convey("Then the failure is reported on the bus", func() {
				So(err, ShouldNotBeNil)
				mu.Lock()
				defer mu.Unlock()
				So(len(completions), ShouldEqual, 1)
				So(completions[0].Data["success"], ShouldEqual, false)
				So(completions[0].Data["steps"], ShouldEqual, 2)
			})
		})
	})
}

func mustService(t *testing.T, st *store.MemoryStore, registry *processor.Registry, bus *eventbus.Bus) *service.Service {
	t.Helper()
	svc := service.New(st, registry, bus, nil)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

// failingIngestor delegates until a chosen step, then fails.
type failingIngestor struct {
	svc    *service.Service
	calls  int
	failAt int
}

func (f *failingIngestor) IngestData(ctx context.Context, source string, dataType model.DataType, payload json.RawMessage) error {
	if f.calls == f.failAt {
		return errors.New("downstream unavailable")
	}
	f.calls++
	return f.svc.IngestData(ctx, source, dataType, payload)
}
