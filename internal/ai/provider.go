// Package ai defines the AI-provider collaborator boundary and the
// deterministic fallback used whenever the provider is unavailable.
//
// Every operation is fallible; callers must catch errors at the call site and
// substitute the fallback. Nothing in this package may panic past the
// boundary.
package ai

import (
	"context"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// Provider is the AI collaborator. All methods honor ctx deadlines.
type Provider interface {
	// GeneratePlan authors a weekly plan for the snapshot's effective phase.
	GeneratePlan(ctx context.Context, snap *model.ContextSnapshot) (*model.WeeklyPlan, error)

	// RunCriticLoop debates a topic between a proposer and a critic agent.
	RunCriticLoop(ctx context.Context, snap *model.ContextSnapshot, topic, knowledge string) ([]model.AgentMessage, error)

	// Chat answers a free-form message in the given role's voice.
	Chat(ctx context.Context, message string, snap *model.ContextSnapshot, knowledge, role string) (string, error)

	// AnalyzeVideo scores technique from extracted frames.
	AnalyzeVideo(ctx context.Context, images []string, contextText string) (*model.AnalysisResult, error)
}
