// Package service provides the core orchestration service that implements
// the dependencies required by the HTTP API. It owns the read cache, funnels
// every ingested payload through the processor table under a per-athlete
// lock, and publishes the resulting events on the bus.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/athlos-ai/athlos/internal/adapters/notify"
	"github.com/athlos-ai/athlos/internal/adapters/store"
	"github.com/athlos-ai/athlos/internal/domain/dedupe"
	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/internal/eventbus"
	"github.com/athlos-ai/athlos/internal/processor"
	"github.com/athlos-ai/athlos/pkg/logger"
	"github.com/athlos-ai/athlos/pkg/metrics"
)

// PlanGenerator produces a weekly plan for one athlete. Implemented by the
// rule engine; substituted in tests.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, athleteID string, phase model.Phase) (*model.WeeklyPlan, error)
}

// snapshot is the immutable read model handed to synchronous getters. A
// refresh builds a fresh snapshot and swaps the pointer, so readers never
// block on writers.
type snapshot struct {
	athletes map[string]*model.Athlete
	order    []string
	plans    map[string]*model.WeeklyPlan
	builtAt  time.Time
}

// Service implements the orchestration core.
type Service struct {
	store    store.DurableStore
	registry *processor.Registry
	bus      *eventbus.Bus
	planner  PlanGenerator
	notifier notify.Notifier
	deduper  dedupe.Deduper

	cache atomic.Pointer[snapshot]
	locks sync.Map // athleteID -> *sync.Mutex

	viewerRole string
	viewerID   string
	dedupeSize int

	started bool
	mu      sync.Mutex

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithViewerRole scopes the read cache. "staff" and "admin" see every
// athlete; "athlete" sees only the viewer's own record.
func WithViewerRole(role, viewerID string) Option {
	return func(s *Service) {
		s.viewerRole = role
		s.viewerID = viewerID
	}
}

// WithDedupeSize sets the size of the ingestion idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithNotifier sets the notifier used for plan-failure feedback.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs the service. planner may be nil when plan regeneration is
// not wired (the HTTP handler then reports it unavailable).
func New(st store.DurableStore, registry *processor.Registry, bus *eventbus.Bus, planner PlanGenerator, opts ...Option) *Service {
	s := &Service{
		store:      st,
		registry:   registry,
		bus:        bus,
		planner:    planner,
		notifier:   notify.NewLogNotifier(),
		viewerRole: "staff",
		dedupeSize: 50000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("service")
	}
	s.cache.Store(&snapshot{
		athletes: map[string]*model.Athlete{},
		plans:    map[string]*model.WeeklyPlan{},
	})
	return s
}

// Start warms the read cache and initializes the idempotency cache. Call
// once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	if err := s.RefreshCache(ctx); err != nil {
		return fmt.Errorf("initial cache refresh: %w", err)
	}

	s.started = true
	s.log.Info(ctx, "orchestration service started",
		logger.String("viewerRole", s.viewerRole),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop marks the service stopped. The bus is owned by the caller and drained
// there.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
}

// SeenAndRecord atomically checks if an event id was seen and records it if
// not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	if s.deduper == nil {
		return false
	}
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordIngestNoop("duplicate")
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if s.deduper != nil {
		s.deduper.Unrecord(ctx, id)
	}
}

// RefreshCache rebuilds the read model from the durable store and swaps it in
// atomically.
func (s *Service) RefreshCache(ctx context.Context) error {
	var athletes []*model.Athlete

	if s.viewerRole == "athlete" && s.viewerID != "" {
		a, err := s.store.GetAthlete(ctx, s.viewerID)
		if err != nil {
			return fmt.Errorf("refresh cache: %w", err)
		}
		athletes = []*model.Athlete{a}
	} else {
		all, err := s.store.GetAllAthletes(ctx)
		if err != nil {
			return fmt.Errorf("refresh cache: %w", err)
		}
		athletes = all
	}

	next := &snapshot{
		athletes: make(map[string]*model.Athlete, len(athletes)),
		order:    make([]string, 0, len(athletes)),
		plans:    make(map[string]*model.WeeklyPlan, len(athletes)),
		builtAt:  time.Now(),
	}
	for _, a := range athletes {
		next.athletes[a.ID] = a
		next.order = append(next.order, a.ID)
		plan, err := s.store.GetWeeklyPlan(ctx, a.ID)
		if err == nil {
			next.plans[a.ID] = plan
		}
	}

	s.cache.Store(next)
	metrics.RecordCacheRefresh()
	metrics.UpdateCachedAthletes(len(next.athletes))
	return nil
}

// GetAthlete returns one athlete from the read cache.
func (s *Service) GetAthlete(id string) (*model.Athlete, bool) {
	a, ok := s.cache.Load().athletes[id]
	return a, ok
}

// GetAllAthletes returns the cached athletes in stable store order.
func (s *Service) GetAllAthletes() []*model.Athlete {
	snap := s.cache.Load()
	out := make([]*model.Athlete, 0, len(snap.order))
	for _, id := range snap.order {
		out = append(out, snap.athletes[id])
	}
	return out
}

// GetWeeklyPlan returns one athlete's cached plan.
func (s *Service) GetWeeklyPlan(athleteID string) (*model.WeeklyPlan, bool) {
	p, ok := s.cache.Load().plans[athleteID]
	return p, ok
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	snap := s.cache.Load()
	stats := map[string]any{
		"cached_athletes": len(snap.athletes),
		"cache_age_ms":    time.Since(snap.builtAt).Milliseconds(),
		"viewer_role":     s.viewerRole,
	}
	if s.deduper != nil {
		stats["dedupe_size"] = s.deduper.Size()
	}
	return stats
}

// CacheAge reports how stale the read model is.
func (s *Service) CacheAge() time.Duration {
	return time.Since(s.cache.Load().builtAt)
}

// lockFor returns the mutex serializing writes for one athlete.
func (s *Service) lockFor(athleteID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(athleteID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// athleteRef is the minimal payload shape every ingested document carries.
type athleteRef struct {
	AthleteID string `json:"athleteId"`
}

// IngestData runs one payload through its processor under the owning
// athlete's lock, persists the result, and publishes the resulting event. An
// unregistered tag or an unknown athlete is a logged no-op, not an error.
func (s *Service) IngestData(ctx context.Context, source string, dataType model.DataType, payload json.RawMessage) error {
	proc, ok := s.registry.Lookup(dataType)
	if !ok {
		metrics.RecordIngestNoop("unknown_type")
		s.log.Warn(ctx, "no processor for data type, skipping",
			logger.String("type", string(dataType)),
			logger.String("source", source),
		)
		return nil
	}

	var ref athleteRef
	if err := json.Unmarshal(payload, &ref); err != nil || ref.AthleteID == "" {
		metrics.RecordIngestNoop("missing_athlete")
		s.log.Warn(ctx, "payload names no athlete, skipping",
			logger.String("type", string(dataType)),
		)
		return nil
	}

	lock := s.lockFor(ref.AthleteID)
	lock.Lock()
	defer lock.Unlock()

	athlete, err := s.store.GetAthlete(ctx, ref.AthleteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordIngestNoop("unknown_athlete")
			s.log.Warn(ctx, "unknown athlete, skipping",
				logger.String("athleteID", ref.AthleteID),
			)
			return nil
		}
		metrics.RecordIngestError()
		return fmt.Errorf("ingest %s: %w", dataType, err)
	}

	start := time.Now()
	res, err := proc.Process(ctx, payload, athlete)
	metrics.RecordProcessorLatency(string(dataType), float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordIngestError()
		return fmt.Errorf("ingest %s: %w", dataType, err)
	}

	if !res.SkipPersistence {
		if err := s.store.UpdateAthlete(ctx, res.Athlete); err != nil {
			metrics.RecordIngestError()
			return fmt.Errorf("ingest %s: persist: %w", dataType, err)
		}
	}

	metrics.RecordIngest(string(dataType))
	s.bus.Publish(ctx, model.EventDataUpdated, map[string]any{
		"type":      string(res.EventType),
		"athleteId": ref.AthleteID,
		"data":      res.EventData,
	})

	if err := s.RefreshCache(ctx); err != nil {
		s.log.Warn(ctx, "cache refresh after ingest failed", logger.Error(err))
	}
	return nil
}

// RegeneratePlan asks the planner for a fresh weekly plan, persists it and
// publishes the update. On failure the athlete gets a UI feedback event
// instead of a broken plan.
func (s *Service) RegeneratePlan(ctx context.Context, athleteID string, phase model.Phase) (*model.WeeklyPlan, error) {
	if s.planner == nil {
		return nil, ErrPlannerUnavailable
	}

	plan, err := s.planner.GeneratePlan(ctx, athleteID, phase)
	if err != nil || plan == nil {
		if err == nil {
			err = ErrPlannerUnavailable
		}
		s.log.Error(ctx, "plan regeneration failed",
			logger.String("athleteID", athleteID),
			logger.Error(err),
		)
		s.bus.Publish(ctx, model.EventUIFeedback, map[string]any{
			"athleteId": athleteID,
			"kind":      "plan_generation_failed",
			"message":   "Plan generation is unavailable right now. The previous plan stays active.",
		})
		s.notifier.Notify(ctx, athleteID, "plan_generation_failed", map[string]any{
			"phase": string(phase),
		})
		return nil, fmt.Errorf("regenerate plan: %w", err)
	}

	lock := s.lockFor(athleteID)
	lock.Lock()
	err = s.store.UpdateWeeklyPlan(ctx, plan)
	lock.Unlock()
	if err != nil {
		return nil, fmt.Errorf("regenerate plan: persist: %w", err)
	}

	s.bus.Publish(ctx, model.EventDataUpdated, map[string]any{
		"type":      "PLAN_GENERATED",
		"athleteId": athleteID,
		"source":    plan.Source,
	})

	if err := s.RefreshCache(ctx); err != nil {
		s.log.Warn(ctx, "cache refresh after plan regeneration failed", logger.Error(err))
	}
	return plan, nil
}
