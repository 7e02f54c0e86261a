package model

// TechnicalTrend classifies the direction of recent analysis scores.
type TechnicalTrend string

const (
	TrendImproving TechnicalTrend = "IMPROVING"
	TrendStable    TechnicalTrend = "STABLE"
	TrendDeclining TechnicalTrend = "DECLINING"
)

// FeedbackEntry is one recent piece of session feedback, most recent first.
type FeedbackEntry struct {
	Day      string `json:"day"`
	Feedback string `json:"feedback"`
}

// ContextSnapshot is an ephemeral, fully-assembled view of an athlete used to
// drive AI calls and rule evaluation. It is constructed fresh on every rule
// engine invocation and never cached; staleness here would undermine
// safety-critical evaluation.
type ContextSnapshot struct {
	Athlete        *Athlete
	Plan           *WeeklyPlan
	LongTermMemory []WeeklySummary
	Macrocycle     *Macrocycle
	ProfilingLevel string // "novice", "developing", "established"
	TechnicalTrend TechnicalTrend
	RecentFeedback []FeedbackEntry // at most 3, most recent first
	PhaseOverride  Phase           // set by plan regeneration, empty otherwise
}

// EffectivePhase returns the phase the snapshot should plan against.
func (c *ContextSnapshot) EffectivePhase() Phase {
	if c.PhaseOverride != "" {
		return c.PhaseOverride
	}
	if c.Plan != nil {
		return c.Plan.Phase
	}
	return PhasePreSeason
}
