package brain

import (
	"context"
	"errors"
	"fmt"

	"github.com/athlos-ai/athlos/internal/adapters/store"
	"github.com/athlos-ai/athlos/internal/domain/model"
)

const maxRecentFeedback = 3

// AssembleSnapshot builds a fresh context snapshot for one athlete. It is
// called on every rule evaluation and every AI-orchestration call; the result
// is never cached.
func AssembleSnapshot(ctx context.Context, s store.DurableStore, athleteID string) (*model.ContextSnapshot, error) {
	athlete, err := s.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("assemble snapshot: %w", err)
	}

	snap := &model.ContextSnapshot{
		Athlete:        athlete,
		ProfilingLevel: profilingLevel(athlete),
		TechnicalTrend: technicalTrend(athlete.AnalysisHistory),
	}

	// Plan, memory and macrocycle are all optional; a missing document is
	// not an assembly failure.
	if plan, err := s.GetWeeklyPlan(ctx, athleteID); err == nil {
		snap.Plan = plan
		snap.RecentFeedback = recentFeedback(plan)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("assemble snapshot: %w", err)
	}
	if sums, err := s.GetWeeklySummaries(ctx, athleteID); err == nil {
		snap.LongTermMemory = sums
	}
	if macro, err := s.GetMacrocycle(ctx, athleteID); err == nil {
		snap.Macrocycle = macro
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("assemble snapshot: %w", err)
	}

	return snap, nil
}

// profilingLevel classifies how much observed history the system has for the
// athlete.
func profilingLevel(a *model.Athlete) string {
	n := len(a.PerfStats) + len(a.AnalysisHistory) + len(a.DailyLogs)
	switch {
	case n < 5:
		return "novice"
	case n < 20:
		return "developing"
	default:
		return "established"
	}
}

// technicalTrend compares the most recent analysis scores against the ones
// before them.
func technicalTrend(history []model.AnalysisRecord) model.TechnicalTrend {
	if len(history) < 2 {
		return model.TrendStable
	}
	split := len(history) - 3
	if split < 1 {
		split = 1
	}
	earlier := meanScore(history[:split])
	recent := meanScore(history[split:])

	const threshold = 0.3
	switch {
	case recent-earlier > threshold:
		return model.TrendImproving
	case earlier-recent > threshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func meanScore(records []model.AnalysisRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Score
	}
	return sum / float64(len(records))
}

// recentFeedback picks the feedback of completed, feedback-bearing sessions,
// most recent first, capped at three.
func recentFeedback(plan *model.WeeklyPlan) []model.FeedbackEntry {
	var out []model.FeedbackEntry
	for i := len(plan.Sessions) - 1; i >= 0 && len(out) < maxRecentFeedback; i-- {
		s := plan.Sessions[i]
		if s.Status == model.SessionCompleted && s.Feedback != "" {
			out = append(out, model.FeedbackEntry{Day: s.Day, Feedback: s.Feedback})
		}
	}
	return out
}
