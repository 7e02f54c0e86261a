package store

import (
	"fmt"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// validateAthlete schema-checks an athlete document before persistence.
func validateAthlete(a *model.Athlete) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("%w: missing athlete id", ErrSchemaViolation)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrSchemaViolation, a.Status)
	}
	for _, log := range a.DailyLogs {
		if log.Date == "" {
			return fmt.Errorf("%w: daily log without date", ErrSchemaViolation)
		}
		if log.Pain < 0 || log.Pain > 10 {
			return fmt.Errorf("%w: pain %d out of range", ErrSchemaViolation, log.Pain)
		}
	}
	for _, inj := range a.Injuries {
		if inj.ID == "" {
			return fmt.Errorf("%w: injury without id", ErrSchemaViolation)
		}
	}
	return nil
}

// validatePlan schema-checks a weekly plan before persistence.
func validatePlan(p *model.WeeklyPlan) error {
	if p == nil || p.AthleteID == "" {
		return fmt.Errorf("%w: missing plan athlete id", ErrSchemaViolation)
	}
	if !p.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrSchemaViolation, p.Phase)
	}
	for _, s := range p.Sessions {
		if s.Zone < 1 || s.Zone > 5 {
			return fmt.Errorf("%w: session zone %d out of range", ErrSchemaViolation, s.Zone)
		}
	}
	return nil
}

// shedOversize moves the bulkiest payload off an oversized athlete document.
// It returns the removed analysis history, or nil when there was nothing to
// shed. The caller persists the sidecar and retries the write.
func shedOversize(a *model.Athlete) []model.AnalysisRecord {
	if len(a.AnalysisHistory) == 0 {
		return nil
	}
	shed := a.AnalysisHistory
	a.AnalysisHistory = nil
	return shed
}
