// Package store defines the durable document-store contract and its
// implementations. The orchestrator is the sole writer; every write is
// schema-checked, and oversized athlete documents are offloaded once before
// the size limit is enforced.
package store

import (
	"context"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// MaxDocumentBytes is the serialized-size ceiling for one document.
const MaxDocumentBytes = 1 << 20

// DurableStore is the document-store collaborator. Implementations must make
// every write schema-checked and fail with ErrDocumentTooLarge only after an
// offload-and-retry attempt.
type DurableStore interface {
	GetAthlete(ctx context.Context, id string) (*model.Athlete, error)
	GetAllAthletes(ctx context.Context) ([]*model.Athlete, error)
	UpdateAthlete(ctx context.Context, a *model.Athlete) error

	GetWeeklyPlan(ctx context.Context, athleteID string) (*model.WeeklyPlan, error)
	UpdateWeeklyPlan(ctx context.Context, p *model.WeeklyPlan) error

	GetMacrocycle(ctx context.Context, athleteID string) (*model.Macrocycle, error)
	SaveMacrocycle(ctx context.Context, athleteID string, m *model.Macrocycle) error

	GetWeeklySummaries(ctx context.Context, athleteID string) ([]model.WeeklySummary, error)
	SaveWeeklySummary(ctx context.Context, athleteID string, s model.WeeklySummary) error

	SaveChatMessage(ctx context.Context, athleteID string, msg model.ChatMessage) error
}
