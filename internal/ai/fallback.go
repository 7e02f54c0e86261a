package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// Fallback is the deterministic, rule-based Provider substituted whenever the
// real provider fails or times out. It never errors and uses no randomness,
// so gating logic stays testable when the provider is down.
type Fallback struct{}

// NewFallback creates the deterministic fallback provider.
func NewFallback() *Fallback { return &Fallback{} }

var week = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// zone templates per phase for a healthy athlete. Risky athletes are clamped
// below zone 3 regardless of phase.
var phaseZones = map[model.Phase][7]int{
	model.PhasePreSeason:   {2, 3, 2, 4, 2, 3, 1},
	model.PhaseCompetitive: {2, 4, 2, 5, 1, 3, 1},
	model.PhaseTransition:  {1, 2, 1, 2, 1, 2, 1},
	model.PhaseTapering:    {2, 3, 1, 2, 1, 1, 1},
}

func (f *Fallback) GeneratePlan(ctx context.Context, snap *model.ContextSnapshot) (*model.WeeklyPlan, error) {
	phase := snap.EffectivePhase()
	zones, ok := phaseZones[phase]
	if !ok {
		zones = phaseZones[model.PhasePreSeason]
	}

	maxZone := 5
	switch snap.Athlete.Status {
	case model.StatusHighRisk:
		maxZone = 2
	case model.StatusCaution:
		maxZone = 3
	}

	sessions := make([]model.TrainingSession, 0, len(week))
	for i, day := range week {
		zone := zones[i]
		if zone > maxZone {
			zone = maxZone
		}
		kind := "endurance"
		switch {
		case zone >= 4:
			kind = "high-intensity"
		case zone == 1:
			kind = "recovery"
		}
		sessions = append(sessions, model.TrainingSession{
			Day:    day,
			Type:   kind,
			Zone:   zone,
			Status: model.SessionPlanned,
		})
	}

	return &model.WeeklyPlan{
		AthleteID:   snap.Athlete.ID,
		Phase:       phase,
		Sessions:    sessions,
		Source:      "fallback",
		GeneratedAt: time.Now(),
	}, nil
}

func (f *Fallback) RunCriticLoop(ctx context.Context, snap *model.ContextSnapshot, topic, knowledge string) ([]model.AgentMessage, error) {
	return []model.AgentMessage{
		{
			Agent: "proposer",
			Content: fmt.Sprintf("On %q: hold the current plan shape and progress load by no more than 10%% week over week while status is %s.",
				topic, snap.Athlete.Status),
		},
		{
			Agent:   "critic",
			Content: "Against the retrieved guidance: verify the load ratio stays inside the 0.8-1.3 band and that no high-intensity work is scheduled until pain and readiness clear.",
		},
	}, nil
}

func (f *Fallback) Chat(ctx context.Context, message string, snap *model.ContextSnapshot, knowledge, role string) (string, error) {
	return fmt.Sprintf("I can't reach the coaching assistant right now. Based on current data: status %s, load ratio %.2f. The conservative default applies: keep intensity low and re-ask later.",
		snap.Athlete.Status, snap.Athlete.LoadRatio), nil
}

func (f *Fallback) AnalyzeVideo(ctx context.Context, images []string, contextText string) (*model.AnalysisResult, error) {
	return &model.AnalysisResult{
		Summary: "Automated analysis unavailable; frames stored for manual review.",
		Score:   0,
		Flags:   []string{"provider_unavailable"},
	}, nil
}
