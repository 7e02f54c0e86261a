package model

import "time"

// Phase is the training macro-phase a weekly plan targets.
type Phase string

const (
	PhasePreSeason   Phase = "PRE_SEASON"
	PhaseCompetitive Phase = "COMPETITIVE"
	PhaseTransition  Phase = "TRANSITION"
	PhaseTapering    Phase = "TAPERING"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhasePreSeason, PhaseCompetitive, PhaseTransition, PhaseTapering:
		return true
	}
	return false
}

// SessionStatus tracks a planned session's lifecycle.
type SessionStatus string

const (
	SessionPlanned   SessionStatus = "PLANNED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionSkipped   SessionStatus = "SKIPPED"
)

// SessionBlock is an optional structured sub-phase of a session.
type SessionBlock struct {
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// TrainingSession is one entry of a weekly plan.
type TrainingSession struct {
	Day         string         `json:"day"`
	Type        string         `json:"type,omitempty"`
	Zone        int            `json:"zone"` // intensity zone 1..5
	Status      SessionStatus  `json:"status"`
	Blocks      []SessionBlock `json:"blocks,omitempty"`
	Feedback    string         `json:"feedback,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// WeeklyPlan is the single cached plan for one athlete.
// Regeneration replaces it wholesale.
type WeeklyPlan struct {
	AthleteID   string            `json:"athlete_id"`
	Phase       Phase             `json:"phase"`
	Sessions    []TrainingSession `json:"sessions"`
	Source      string            `json:"source,omitempty"` // "ai" or "fallback"
	GeneratedAt time.Time         `json:"generated_at"`
}

// MacroPhase is one block of a macrocycle.
type MacroPhase struct {
	Phase Phase  `json:"phase"`
	From  string `json:"from"` // YYYY-MM-DD
	To    string `json:"to"`   // YYYY-MM-DD
	Goal  string `json:"goal,omitempty"`
}

// Macrocycle is the season-level periodization for one athlete.
type Macrocycle struct {
	AthleteID string       `json:"athlete_id"`
	Season    string       `json:"season,omitempty"`
	Phases    []MacroPhase `json:"phases,omitempty"`
}

// WeeklySummary is one rolling long-term-memory entry.
type WeeklySummary struct {
	Week    string `json:"week"` // ISO week, e.g. 2026-W35
	Summary string `json:"summary"`
}

// ChatMessage is one persisted chat transcript entry.
type ChatMessage struct {
	ID        string    `json:"id"`
	AthleteID string    `json:"athlete_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	At        time.Time `json:"at"`
}

// AgentMessage is one turn of a critic-loop debate.
type AgentMessage struct {
	Agent   string `json:"agent"` // e.g. "proposer", "critic"
	Content string `json:"content"`
}

// AnalysisResult is the outcome of a video analysis call.
type AnalysisResult struct {
	Summary string   `json:"summary"`
	Score   float64  `json:"score"`
	Flags   []string `json:"flags,omitempty"`
}
