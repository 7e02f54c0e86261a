// Package simulation replays a scripted athlete timeline through the
// orchestration service. It exists for demos and soak checks: the same
// ingestion path, processors and rule engine run as in production, driven by
// a deterministic script instead of live devices.
package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/internal/eventbus"
	"github.com/athlos-ai/athlos/pkg/logger"
)

// Ingestor is the slice of the orchestration service the runner drives.
type Ingestor interface {
	IngestData(ctx context.Context, source string, dataType model.DataType, payload json.RawMessage) error
}

// Step is one scripted ingestion.
type Step struct {
	Label   string
	Type    model.DataType
	Payload json.RawMessage
}

// Runner replays a script and reports the outcome on the bus.
type Runner struct {
	svc   Ingestor
	bus   *eventbus.Bus
	steps []Step
	delay time.Duration
	log   logger.Logger
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithSteps replaces the built-in script.
func WithSteps(steps []Step) Option {
	return func(r *Runner) { r.steps = steps }
}

// WithStepDelay spaces the scripted ingestions out in time. Zero replays the
// script as fast as the orchestrator accepts it.
func WithStepDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// New constructs a runner over the default one-week script.
func New(svc Ingestor, bus *eventbus.Bus, athleteID string, opts ...Option) *Runner {
	r := &Runner{
		svc:   svc,
		bus:   bus,
		steps: defaultScript(athleteID),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Named("simulation")
	}
	return r
}

// Run replays the script in order. The first failing step aborts the run;
// either way a completion event is published with the outcome.
func (r *Runner) Run(ctx context.Context) error {
	var runErr error
	executed := 0

	for _, step := range r.steps {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("simulation aborted: %w", err)
			break
		}
		r.log.Info(ctx, "simulation step",
			logger.String("label", step.Label),
			logger.String("type", string(step.Type)),
		)
		if err := r.svc.IngestData(ctx, "simulation", step.Type, step.Payload); err != nil {
			runErr = fmt.Errorf("simulation step %q: %w", step.Label, err)
			break
		}
		executed++
		if r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
			}
		}
	}

	r.bus.Publish(ctx, model.EventSimulationComplete, map[string]any{
		"success": runErr == nil,
		"steps":   executed,
		"total":   len(r.steps),
	})
	return runErr
}

// defaultScript is a one-week arc: clean training, a load spike with rising
// pain, an injury, therapy, and the resolution.
func defaultScript(athleteID string) []Step {
	day := func(offset int) string {
		return time.Now().AddDate(0, 0, -offset).Format("2006-01-02")
	}
	checkin := func(offset int, load float64, pain, rpe int) json.RawMessage {
		b, _ := json.Marshal(map[string]any{
			"athleteId": athleteID,
			"date":      day(offset),
			"load":      load,
			"pain":      pain,
			"rpe":       rpe,
		})
		return b
	}

	raw := func(v map[string]any) json.RawMessage {
		b, _ := json.Marshal(v)
		return b
	}

	return []Step{
		{"baseline monday", model.TypeRecoveryMetrics, checkin(6, 40, 0, 4)},
		{"baseline tuesday", model.TypeRecoveryMetrics, checkin(5, 45, 0, 5)},
		{"load spike", model.TypeRecoveryMetrics, checkin(4, 95, 2, 7)},
		{"pain rising", model.TypeRecoveryMetrics, checkin(3, 80, 4, 8)},
		{"injury reported", model.TypeInjuryUpdate, raw(map[string]any{
			"athleteId": athleteID,
			"id":        "sim-injury-1",
			"area":      "hamstring",
			"severity":  3,
			"status":    string(model.InjuryActive),
		})},
		{"therapy session", model.TypeTherapySession, raw(map[string]any{
			"athleteId": athleteID,
			"id":        "sim-therapy-1",
			"kind":      "physio",
			"notes":     "eccentric loading, reduced tenderness",
		})},
		{"injury resolved", model.TypeInjuryResolved, raw(map[string]any{
			"athleteId": athleteID,
			"id":        "sim-injury-1",
		})},
		{"recovery check-in", model.TypeRecoveryMetrics, checkin(0, 35, 0, 3)},
	}
}
