package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// StatPayload upserts or deletes one performance record.
type StatPayload struct {
	ID     string  `json:"id"`
	Event  string  `json:"event,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
	IsPB   bool    `json:"is_pb,omitempty"`
	Date   string  `json:"date,omitempty"`
	Delete bool    `json:"delete,omitempty"`
}

// statUpdate maintains the performance stat history. Invariant: at most one
// IsPB record per event name; inserting a new PB clears the flag on siblings.
type statUpdate struct{}

func (p *statUpdate) Type() model.DataType { return model.TypeStatUpdate }

func (p *statUpdate) Process(ctx context.Context, payload json.RawMessage, a *model.Athlete) (Result, error) {
	var in StatPayload
	if err := decode(payload, &in); err != nil {
		return Result{}, err
	}

	if in.Delete {
		for i := range a.PerfStats {
			if a.PerfStats[i].ID == in.ID {
				a.PerfStats = append(a.PerfStats[:i], a.PerfStats[i+1:]...)
				break
			}
		}
	} else {
		if in.IsPB {
			for i := range a.PerfStats {
				if a.PerfStats[i].Event == in.Event {
					a.PerfStats[i].IsPB = false
				}
			}
		}
		stat := model.PerfStat{
			ID: in.ID, Event: in.Event, Value: in.Value,
			Unit: in.Unit, IsPB: in.IsPB, Date: in.Date,
		}
		replaced := false
		for i := range a.PerfStats {
			if a.PerfStats[i].ID == in.ID {
				a.PerfStats[i] = stat
				replaced = true
				break
			}
		}
		if !replaced {
			a.PerfStats = append(a.PerfStats, stat)
		}
	}
	a.UpdatedAt = time.Now()

	return Result{
		Athlete:   a,
		EventType: model.TypeStatUpdate,
		EventData: map[string]any{"statId": in.ID, "event": in.Event, "deleted": in.Delete},
	}, nil
}
