// Package brain is the reactive rule engine. It subscribes to data-update
// events, reassembles a context snapshot, confirms rule conditions against
// retrieved domain knowledge, and publishes alerts. It also fronts every
// AI-provider call with a deterministic fallback so rule evaluation never
// blocks on an unavailable provider.
package brain

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/athlos-ai/athlos/internal/adapters/store"
	"github.com/athlos-ai/athlos/internal/ai"
	"github.com/athlos-ai/athlos/internal/domain/knowledge"
	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/internal/eventbus"
	"github.com/athlos-ai/athlos/pkg/logger"
	"github.com/athlos-ai/athlos/pkg/metrics"
)

const (
	defaultProviderTimeout = 30 * time.Second
	chatMaxRetries         = 2
	chatBackoffUnit        = time.Second
)

// Engine evaluates safety rules reactively and mediates AI-provider calls.
type Engine struct {
	bus      *eventbus.Bus
	store    store.DurableStore
	provider ai.Provider
	fallback ai.Provider
	corpus   *knowledge.Corpus
	rules    []Rule

	providerTimeout time.Duration
	sleep           func(time.Duration)
	unsubscribe     func()
	log             logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithProviderTimeout bounds every AI-provider call.
func WithProviderTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.providerTimeout = d
		}
	}
}

// WithRules replaces the wired rule table.
func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// withSleep replaces the retry backoff sleeper in tests.
func withSleep(f func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = f }
}

// New constructs the engine. provider may be nil, in which case every call
// takes the deterministic fallback path directly.
func New(bus *eventbus.Bus, st store.DurableStore, provider ai.Provider, corpus *knowledge.Corpus, opts ...Option) *Engine {
	e := &Engine{
		bus:             bus,
		store:           st,
		provider:        provider,
		fallback:        ai.NewFallback(),
		corpus:          corpus,
		rules:           defaultRules(),
		providerTimeout: defaultProviderTimeout,
		sleep:           time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("brain")
	}
	return e
}

// Start subscribes the engine to data-update events. Call once.
func (e *Engine) Start() {
	e.unsubscribe = e.bus.Subscribe(model.EventDataUpdated, e.onDataUpdated)
}

// Stop unsubscribes the engine.
func (e *Engine) Stop() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

func (e *Engine) onDataUpdated(ctx context.Context, ev eventbus.Event) {
	athleteID, _ := ev.Data["athleteId"].(string)
	if athleteID == "" {
		return
	}
	eventType, _ := ev.Data["type"].(string)

	snap, err := AssembleSnapshot(ctx, e.store, athleteID)
	if err != nil {
		e.log.Warn(ctx, "snapshot assembly failed, skipping rule evaluation",
			logger.String("athleteID", athleteID),
			logger.Error(err),
		)
		return
	}

	knowledgeText := e.corpus.Retrieve(topicFor(model.DataType(eventType)))

	for _, rule := range e.rules {
		if !rule.Fires(snap, knowledgeText) {
			continue
		}
		metrics.RecordAlert(model.AlertLevelCritical)
		e.log.Warn(ctx, "safety rule fired",
			logger.String("rule", rule.Name),
			logger.String("athleteID", athleteID),
		)
		e.bus.Publish(ctx, model.EventSystemAlert, map[string]any{
			"level":     model.AlertLevelCritical,
			"message":   rule.Alert(snap),
			"athleteId": athleteID,
			"rule":      rule.Name,
		})
	}
}

// topicFor derives the knowledge query from the event type.
func topicFor(t model.DataType) string {
	switch t {
	case model.TypeRecoveryMetrics:
		return "training load workload acwr recovery readiness"
	case model.TypeInjuryUpdate, model.TypeInjuryResolved:
		return "injury pain risk load"
	case model.TypeTherapySession:
		return "recovery fatigue"
	case model.TypeStatUpdate:
		return "performance monitoring intensity"
	default:
		return "plan load periodization"
	}
}

// GeneratePlan assembles a fresh snapshot, overrides its phase and asks the
// provider for a plan, falling back deterministically on any failure.
func (e *Engine) GeneratePlan(ctx context.Context, athleteID string, phase model.Phase) (*model.WeeklyPlan, error) {
	snap, err := AssembleSnapshot(ctx, e.store, athleteID)
	if err != nil {
		return nil, err
	}
	snap.PhaseOverride = phase

	if e.provider != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
		start := time.Now()
		plan, err := e.provider.GeneratePlan(callCtx, snap)
		cancel()
		metrics.RecordAILatency("generate_plan", float64(time.Since(start).Milliseconds()))
		if err == nil && plan != nil {
			metrics.RecordAICall("generate_plan", "ok")
			return plan, nil
		}
		metrics.RecordAICall("generate_plan", "error")
		e.log.Warn(ctx, "plan generation failed, using fallback", logger.Error(err))
	}
	metrics.RecordAIFallback("generate_plan")
	return e.fallback.GeneratePlan(ctx, snap)
}

// RunCriticLoop debates a topic with knowledge retrieved for it, templated
// deterministically when the provider fails.
func (e *Engine) RunCriticLoop(ctx context.Context, athleteID, topic string) ([]model.AgentMessage, error) {
	snap, err := AssembleSnapshot(ctx, e.store, athleteID)
	if err != nil {
		return nil, err
	}
	knowledgeText := e.corpus.Retrieve(topic)

	if e.provider != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
		msgs, err := e.provider.RunCriticLoop(callCtx, snap, topic, knowledgeText)
		cancel()
		if err == nil && len(msgs) > 0 {
			metrics.RecordAICall("critic_loop", "ok")
			return msgs, nil
		}
		metrics.RecordAICall("critic_loop", "error")
		e.log.Warn(ctx, "critic loop failed, using fallback", logger.Error(err))
	}
	metrics.RecordAIFallback("critic_loop")
	return e.fallback.RunCriticLoop(ctx, snap, topic, knowledgeText)
}

// AnalyzeVideo fronts the vision call with the deterministic fallback.
func (e *Engine) AnalyzeVideo(ctx context.Context, images []string, contextText string) (*model.AnalysisResult, error) {
	if e.provider != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
		res, err := e.provider.AnalyzeVideo(callCtx, images, contextText)
		cancel()
		if err == nil && res != nil {
			metrics.RecordAICall("analyze_video", "ok")
			return res, nil
		}
		metrics.RecordAICall("analyze_video", "error")
		e.log.Warn(ctx, "video analysis failed, using fallback", logger.Error(err))
	}
	metrics.RecordAIFallback("analyze_video")
	return e.fallback.AnalyzeVideo(ctx, images, contextText)
}

// User-facing chat failure messages by error class.
const (
	chatMsgRateLimited = "The assistant is handling too many requests right now. Please try again in a minute."
	chatMsgTimeout     = "The assistant took too long to answer. Please try again."
	chatMsgAuth        = "The assistant is not available for this account. Contact your administrator."
	chatMsgGeneric     = "The assistant hit an unexpected problem. Please try again later."
)

// Chat answers a message with retrieved knowledge in context. Unlike the
// other calls it retries twice with a linear backoff, and on exhaustion
// returns a user-facing explanation of the failure class instead of the
// deterministic fallback text.
func (e *Engine) Chat(ctx context.Context, athleteID, message, role string) (string, error) {
	snap, err := AssembleSnapshot(ctx, e.store, athleteID)
	if err != nil {
		return "", err
	}
	knowledgeText := e.corpus.Retrieve(message)

	if e.provider == nil {
		metrics.RecordAIFallback("chat")
		return e.fallback.Chat(ctx, message, snap, knowledgeText, role)
	}

	var lastErr error
	for attempt := 0; attempt <= chatMaxRetries; attempt++ {
		if attempt > 0 {
			// Linear backoff keyed to the attempt that just failed: 1s
			// after the first failure, 2s after the second.
			e.sleep(chatBackoffUnit * time.Duration(attempt))
		}
		callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
		reply, err := e.provider.Chat(callCtx, message, snap, knowledgeText, role)
		cancel()
		if err == nil {
			metrics.RecordAICall("chat", "ok")
			e.saveChatTranscript(ctx, athleteID, message, reply)
			return reply, nil
		}
		lastErr = err
		metrics.RecordAICall("chat", "error")
		e.log.Warn(ctx, "chat attempt failed",
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
	}

	metrics.RecordAIFallback("chat")
	return classifyChatError(lastErr), nil
}

func (e *Engine) saveChatTranscript(ctx context.Context, athleteID, message, reply string) {
	now := time.Now()
	for _, msg := range []model.ChatMessage{
		{ID: uuid.NewString(), AthleteID: athleteID, Role: "user", Content: message, At: now},
		{ID: uuid.NewString(), AthleteID: athleteID, Role: "assistant", Content: reply, At: now},
	} {
		if err := e.store.SaveChatMessage(ctx, athleteID, msg); err != nil {
			e.log.Warn(ctx, "chat transcript write failed", logger.Error(err))
		}
	}
}

// classifyChatError maps the last provider error to one of four user-facing
// messages.
func classifyChatError(err error) string {
	if err == nil {
		return chatMsgGeneric
	}
	msg := strings.ToLower(err.Error())
	var netErr net.Error

	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return chatMsgRateLimited
	case errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(msg, "timeout"):
		return chatMsgTimeout
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key"):
		return chatMsgAuth
	default:
		return chatMsgGeneric
	}
}
