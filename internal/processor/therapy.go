package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// TherapyPayload records one treatment session.
type TherapyPayload struct {
	ID    string `json:"id,omitempty"`
	Kind  string `json:"kind"`
	Notes string `json:"notes,omitempty"`
	Date  string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}

// therapySession prepends one entry to the therapy log, newest first.
type therapySession struct{}

func (p *therapySession) Type() model.DataType { return model.TypeTherapySession }

func (p *therapySession) Process(ctx context.Context, payload json.RawMessage, a *model.Athlete) (Result, error) {
	var in TherapyPayload
	if err := decode(payload, &in); err != nil {
		return Result{}, err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	date := time.Now()
	if in.Date != "" {
		if parsed, err := time.Parse(dateLayout, in.Date); err == nil {
			date = parsed
		}
	}

	entry := model.TherapyEntry{ID: in.ID, Kind: in.Kind, Notes: in.Notes, Date: date}
	a.TherapyLog = append([]model.TherapyEntry{entry}, a.TherapyLog...)
	a.UpdatedAt = time.Now()

	return Result{
		Athlete:   a,
		EventType: model.TypeTherapySession,
		EventData: map[string]any{"therapyId": in.ID, "kind": in.Kind},
	}, nil
}
