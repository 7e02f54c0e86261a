package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// severeThreshold is the severity above which an active injury forces
// HIGH_RISK regardless of the risk state machine.
const severeThreshold = 2

// InjuryPayload upserts one injury by id.
type InjuryPayload struct {
	ID       string             `json:"id"`
	Area     string             `json:"area,omitempty"`
	Severity int                `json:"severity,omitempty"`
	Status   model.InjuryStatus `json:"status,omitempty"`
	Notes    string             `json:"notes,omitempty"`
}

// injuryUpdate handles both INJURY_UPDATE and INJURY_RESOLVED; the resolved
// flavor forces the injury status and may release the HIGH_RISK override.
type injuryUpdate struct {
	resolved bool
}

func (p *injuryUpdate) Type() model.DataType {
	if p.resolved {
		return model.TypeInjuryResolved
	}
	return model.TypeInjuryUpdate
}

func (p *injuryUpdate) Process(ctx context.Context, payload json.RawMessage, a *model.Athlete) (Result, error) {
	var in InjuryPayload
	if err := decode(payload, &in); err != nil {
		return Result{}, err
	}
	if p.resolved {
		in.Status = model.InjuryResolved
	}

	stored := upsertInjury(a, in)

	// Severe active injuries override the derived status in both directions:
	// reporting one forces HIGH_RISK, resolving the last one allows OPTIMAL.
	// The check runs against the stored record, not the raw payload, so a
	// payload that omits status (defaulted to ACTIVE) or severity (kept from
	// the existing record) still triggers the override.
	if stored.Status == model.InjuryActive && stored.Severity > severeThreshold {
		a.Status = model.StatusHighRisk
	} else if p.resolved && a.ActiveSevereInjuries() == 0 {
		a.Status = model.StatusOptimal
	}
	a.UpdatedAt = time.Now()

	return Result{
		Athlete:   a,
		EventType: p.Type(),
		EventData: map[string]any{
			"injuryId": in.ID,
			"status":   string(a.Status),
		},
	}, nil
}

func upsertInjury(a *model.Athlete, in InjuryPayload) *model.Injury {
	now := time.Now()
	for i := range a.Injuries {
		if a.Injuries[i].ID == in.ID {
			if in.Area != "" {
				a.Injuries[i].Area = in.Area
			}
			if in.Severity != 0 {
				a.Injuries[i].Severity = in.Severity
			}
			if in.Status != "" {
				a.Injuries[i].Status = in.Status
			}
			if in.Notes != "" {
				a.Injuries[i].Notes = in.Notes
			}
			a.Injuries[i].UpdatedAt = now
			return &a.Injuries[i]
		}
	}
	status := in.Status
	if status == "" {
		status = model.InjuryActive
	}
	a.Injuries = append(a.Injuries, model.Injury{
		ID:        in.ID,
		Area:      in.Area,
		Severity:  in.Severity,
		Status:    status,
		Notes:     in.Notes,
		UpdatedAt: now,
	})
	return &a.Injuries[len(a.Injuries)-1]
}
