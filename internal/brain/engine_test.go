package brain_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/athlos-ai/athlos/internal/adapters/store"
	"github.com/athlos-ai/athlos/internal/brain"
	"github.com/athlos-ai/athlos/internal/domain/knowledge"
	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/internal/eventbus"
	"github.com/athlos-ai/athlos/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func seedAthlete(st *store.MemoryStore, status model.Status) {
	_ = st.Seed(&model.Athlete{
		ID: "a1", Name: "Jo", Status: status, LoadRatio: 1.8, HRV: 50,
	})
}

func seedPlan(st *store.MemoryStore, zone int) {
	_ = st.UpdateWeeklyPlan(context.Background(), &model.WeeklyPlan{
		AthleteID: "a1",
		Phase:     model.PhaseCompetitive,
		Sessions: []model.TrainingSession{
			{Day: "Monday", Zone: 2, Status: model.SessionCompleted, Feedback: "felt heavy"},
			{Day: "Wednesday", Zone: zone, Status: model.SessionPlanned},
		},
	})
}

type alertSink struct {
	mu     sync.Mutex
	alerts []map[string]any
}

func (s *alertSink) attach(bus *eventbus.Bus) {
	bus.Subscribe(model.EventSystemAlert, func(ctx context.Context, e eventbus.Event) {
		s.mu.Lock()
		s.alerts = append(s.alerts, e.Data)
		s.mu.Unlock()
	})
}

func (s *alertSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

func TestGoldenRule(t *testing.T) {
	Convey("Given a started engine listening on the bus", t, func() {
		bus := eventbus.New()
		defer bus.Close()
		st := store.NewMemoryStore()
		sink := &alertSink{}
		sink.attach(bus)

		engine := brain.New(bus, st, nil, knowledge.NewCorpus())
		engine.Start()
		defer engine.Stop()

		publish := func() {
			bus.Publish(context.Background(), model.EventDataUpdated, map[string]any{
				"type":      string(model.TypeRecoveryMetrics),
				"athleteId": "a1",
			})
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			So(bus.Drain(ctx), ShouldBeNil)
		}

		Convey("When a high-risk athlete has a planned zone-5 session", func() {
			seedAthlete(st, model.StatusHighRisk)
			seedPlan(st, 5)
			publish()

			Convey("Then a CRITICAL system alert is published", func() {
				So(sink.count(), ShouldEqual, 1)
				sink.mu.Lock()
				defer sink.mu.Unlock()
				So(sink.alerts[0]["level"], ShouldEqual, model.AlertLevelCritical)
				So(sink.alerts[0]["rule"], ShouldEqual, "golden")
			})
		})

		Convey("When the planned session is only zone 2", func() {
			seedAthlete(st, model.StatusHighRisk)
			seedPlan(st, 2)
			publish()

			Convey("Then no alert is published", func() {
				So(sink.count(), ShouldEqual, 0)
			})
		})

		Convey("When the athlete is not high-risk", func() {
			seedAthlete(st, model.StatusOptimal)
			seedPlan(st, 5)
			publish()

			Convey("Then no alert is published", func() {
				So(sink.count(), ShouldEqual, 0)
			})
		})

		Convey("When the event names an unknown athlete", func() {
			publish()

			Convey("Then evaluation is skipped silently", func() {
				So(sink.count(), ShouldEqual, 0)
			})
		})
	})
}

func TestSnapshotAssembly(t *testing.T) {
	ctx := context.Background()

	Convey("Given an athlete with history, plan, memory and macrocycle", t, func() {
		st := store.NewMemoryStore()
		athlete := &model.Athlete{
			ID: "a1", Name: "Jo", Status: model.StatusCaution,
			AnalysisHistory: []model.AnalysisRecord{
				{ID: "1", Score: 5.0}, {ID: "2", Score: 5.1},
				{ID: "3", Score: 6.0}, {ID: "4", Score: 6.2}, {ID: "5", Score: 6.4},
			},
		}
		So(st.Seed(athlete), ShouldBeNil)
		So(st.UpdateWeeklyPlan(ctx, &model.WeeklyPlan{
			AthleteID: "a1",
			Phase:     model.PhasePreSeason,
			Sessions: []model.TrainingSession{
				{Day: "Mon", Zone: 2, Status: model.SessionCompleted, Feedback: "good"},
				{Day: "Tue", Zone: 3, Status: model.SessionCompleted},
				{Day: "Wed", Zone: 2, Status: model.SessionCompleted, Feedback: "tired"},
				{Day: "Thu", Zone: 2, Status: model.SessionSkipped, Feedback: "ignored, skipped"},
				{Day: "Fri", Zone: 4, Status: model.SessionCompleted, Feedback: "strong"},
			},
		}), ShouldBeNil)
		So(st.SaveWeeklySummary(ctx, "a1", model.WeeklySummary{Week: "2026-W34", Summary: "base week"}), ShouldBeNil)
		So(st.SaveMacrocycle(ctx, "a1", &model.Macrocycle{AthleteID: "a1", Season: "2026/27"}), ShouldBeNil)

		Convey("When the snapshot is assembled", func() {
			snap, err := brain.AssembleSnapshot(ctx, st, "a1")

			Convey("Then all parts are present", func() {
				So(err, ShouldBeNil)
				So(snap.Athlete.ID, ShouldEqual, "a1")
				So(snap.Plan, ShouldNotBeNil)
				So(len(snap.LongTermMemory), ShouldEqual, 1)
				So(snap.Macrocycle.Season, ShouldEqual, "2026/27")
			})

			Convey("And the technical trend reads improving", func() {
				So(snap.TechnicalTrend, ShouldEqual, model.TrendImproving)
			})

			Convey("And recent feedback is capped at 3, most recent first, completed only", func() {
				So(len(snap.RecentFeedback), ShouldEqual, 3)
				So(snap.RecentFeedback[0].Day, ShouldEqual, "Fri")
				So(snap.RecentFeedback[1].Day, ShouldEqual, "Wed")
				So(snap.RecentFeedback[2].Day, ShouldEqual, "Mon")
			})
		})
	})

	Convey("Given an athlete with no plan or extras", t, func() {
		st := store.NewMemoryStore()
		So(st.Seed(&model.Athlete{ID: "a2", Name: "Sam", Status: model.StatusOptimal}), ShouldBeNil)

		Convey("When the snapshot is assembled", func() {
			snap, err := brain.AssembleSnapshot(context.Background(), st, "a2")

			Convey("Then optional parts stay nil and the trend is stable", func() {
				So(err, ShouldBeNil)
				So(snap.Plan, ShouldBeNil)
				So(snap.Macrocycle, ShouldBeNil)
				So(snap.TechnicalTrend, ShouldEqual, model.TrendStable)
				So(snap.ProfilingLevel, ShouldEqual, "novice")
			})
		})
	})
}

func TestPlanGenerationFallback(t *testing.T) {
	Convey("Given an engine with no provider", t, func() {
		bus := eventbus.New()
		defer bus.Close()
		st := store.NewMemoryStore()
		seedAthlete(st, model.StatusHighRisk)

		engine := brain.New(bus, st, nil, knowledge.NewCorpus())

		Convey("When a plan is generated", func() {
			plan, err := engine.GeneratePlan(context.Background(), "a1", model.PhaseCompetitive)

			Convey("Then the deterministic fallback produces a safe plan", func() {
				So(err, ShouldBeNil)
				So(plan.Source, ShouldEqual, "fallback")
				So(plan.Phase, ShouldEqual, model.PhaseCompetitive)
				for _, s := range plan.Sessions {
					So(s.Zone, ShouldBeLessThanOrEqualTo, 2)
				}
			})
		})

		Convey("When the critic loop runs", func() {
			msgs, err := engine.RunCriticLoop(context.Background(), "a1", "sprint load")

			Convey("Then templated messages come back", func() {
				So(err, ShouldBeNil)
				So(len(msgs), ShouldEqual, 2)
			})
		})
	})
}
