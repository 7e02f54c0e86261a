package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/athlos-ai/athlos/internal/adapters/notify"
	"github.com/athlos-ai/athlos/internal/domain/acwr"
	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/internal/domain/risk"
)

const (
	maxDailyLogs   = 60
	maxLoadHistory = 90
	dateLayout     = "2006-01-02"
)

// RecoveryPayload is a daily check-in: training load plus wellness markers.
type RecoveryPayload struct {
	Date         string  `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Load         float64 `json:"load"`
	Pain         int     `json:"pain"`
	RPE          *int    `json:"rpe,omitempty"`
	SleepQuality *int    `json:"sleep_quality,omitempty"`
	Readiness    *int    `json:"readiness,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// recoveryMetrics folds a check-in into the aggregate: load history, daily
// log, recomputed load ratio, derived status and HRV, and an optional alert.
type recoveryMetrics struct {
	notifier notify.Notifier
}

func (p *recoveryMetrics) Type() model.DataType { return model.TypeRecoveryMetrics }

func (p *recoveryMetrics) Process(ctx context.Context, payload json.RawMessage, a *model.Athlete) (Result, error) {
	var in RecoveryPayload
	if err := decode(payload, &in); err != nil {
		return Result{}, err
	}
	date := in.Date
	if date == "" {
		date = time.Now().Format(dateLayout)
	}

	a.LoadHistory = append(a.LoadHistory, model.LoadPoint{Date: date, Load: in.Load})
	if len(a.LoadHistory) > maxLoadHistory {
		a.LoadHistory = a.LoadHistory[len(a.LoadHistory)-maxLoadHistory:]
	}

	upsertDailyLog(a, model.DailyLog{
		Date:         date,
		Pain:         in.Pain,
		RPE:          in.RPE,
		SleepQuality: in.SleepQuality,
		Notes:        in.Notes,
	})

	a.LoadRatio = acwr.Ratio(a.Loads())

	m := risk.Metrics{
		Pain:         in.Pain,
		RPE:          in.RPE,
		LoadRatio:    a.LoadRatio,
		SleepQuality: in.SleepQuality,
	}
	newStatus, alert := risk.Next(a.Status, m)
	a.HRV = risk.AdjustHRV(a.HRV, risk.Escalates(m), m)
	a.Status = newStatus
	if in.Readiness != nil {
		a.Readiness = *in.Readiness
	}
	a.UpdatedAt = time.Now()

	if alert && p.notifier != nil {
		p.notifier.Notify(ctx, a.ID, "risk_alert", map[string]any{
			"status":    string(a.Status),
			"pain":      in.Pain,
			"loadRatio": a.LoadRatio,
		})
	}

	return Result{
		Athlete:   a,
		EventType: model.TypeRecoveryMetrics,
		EventData: map[string]any{
			"date":      date,
			"status":    string(a.Status),
			"loadRatio": a.LoadRatio,
			"alert":     alert,
		},
	}, nil
}

// upsertDailyLog dedups by calendar date (most recent wins) and keeps the
// last maxDailyLogs entries.
func upsertDailyLog(a *model.Athlete, entry model.DailyLog) {
	for i := range a.DailyLogs {
		if a.DailyLogs[i].Date == entry.Date {
			a.DailyLogs[i] = entry
			return
		}
	}
	a.DailyLogs = append(a.DailyLogs, entry)
	if len(a.DailyLogs) > maxDailyLogs {
		a.DailyLogs = a.DailyLogs[len(a.DailyLogs)-maxDailyLogs:]
	}
}
