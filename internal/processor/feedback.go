package processor

import (
	"context"
	"encoding/json"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// FeedbackPayload records human feedback on AI output. The feedback store is
// written server-side by the collecting surface; this processor only relays
// the event, so persistence is skipped.
type FeedbackPayload struct {
	Target  string `json:"target"` // what the feedback is about, e.g. "plan"
	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment,omitempty"`
}

type aiFeedback struct{}

func (p *aiFeedback) Type() model.DataType { return model.TypeAIFeedback }

func (p *aiFeedback) Process(ctx context.Context, payload json.RawMessage, a *model.Athlete) (Result, error) {
	var in FeedbackPayload
	if err := decode(payload, &in); err != nil {
		return Result{}, err
	}

	return Result{
		Athlete:         a,
		EventType:       model.TypeAIFeedback,
		EventData:       map[string]any{"target": in.Target, "rating": in.Rating, "comment": in.Comment},
		SkipPersistence: true,
	}, nil
}
