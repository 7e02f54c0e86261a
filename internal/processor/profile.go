package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// profileUpdate shallow-merges arbitrary profile fields into the aggregate.
type profileUpdate struct{}

func (p *profileUpdate) Type() model.DataType { return model.TypeProfileUpdate }

func (p *profileUpdate) Process(ctx context.Context, payload json.RawMessage, a *model.Athlete) (Result, error) {
	var fields map[string]any
	if err := decode(payload, &fields); err != nil {
		return Result{}, err
	}

	// Well-known fields land on the aggregate itself; the rest shallow-merge
	// into the free-form profile map.
	if a.Profile == nil {
		a.Profile = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				a.Name = s
			}
		case "sport":
			if s, ok := v.(string); ok {
				a.Sport = s
			}
		default:
			a.Profile[k] = v
		}
	}
	a.UpdatedAt = time.Now()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	return Result{
		Athlete:   a,
		EventType: model.TypeProfileUpdate,
		EventData: map[string]any{"fields": keys},
	}, nil
}
