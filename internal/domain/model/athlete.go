// Package model contains domain models passed between layers.
package model

import "time"

// Status classifies an athlete's derived risk state.
type Status string

const (
	StatusOptimal  Status = "OPTIMAL"
	StatusCaution  Status = "CAUTION"
	StatusHighRisk Status = "HIGH_RISK"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOptimal, StatusCaution, StatusHighRisk:
		return true
	}
	return false
}

// InjuryStatus tracks the lifecycle of a reported injury.
type InjuryStatus string

const (
	InjuryActive     InjuryStatus = "ACTIVE"
	InjuryRecovering InjuryStatus = "RECOVERING"
	InjuryResolved   InjuryStatus = "RESOLVED"
)

// LoadPoint is one day's training load.
type LoadPoint struct {
	Date string  `json:"date"` // YYYY-MM-DD
	Load float64 `json:"load"`
}

// DailyLog is an athlete's check-in for one calendar date.
// At most one entry per date is kept; same-date ingestion wins with the latest.
type DailyLog struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Pain         int    `json:"pain"`
	RPE          *int   `json:"rpe,omitempty"`
	SleepQuality *int   `json:"sleep_quality,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Injury is a reported injury tracked by id.
type Injury struct {
	ID        string       `json:"id"`
	Area      string       `json:"area"`
	Severity  int          `json:"severity"` // 1 (minor) .. 5 (severe)
	Status    InjuryStatus `json:"status"`
	Notes     string       `json:"notes,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TherapyEntry is one treatment session, newest first in the log.
type TherapyEntry struct {
	ID    string    `json:"id"`
	Kind  string    `json:"kind"`
	Notes string    `json:"notes,omitempty"`
	Date  time.Time `json:"date"`
}

// Competition is an upcoming or past competitive fixture.
type Competition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"` // YYYY-MM-DD
}

// PerfStat is a single performance record for a named event.
// At most one record per event name may carry IsPB.
type PerfStat struct {
	ID    string  `json:"id"`
	Event string  `json:"event"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	IsPB  bool    `json:"is_pb"`
	Date  string  `json:"date"` // YYYY-MM-DD
}

// AnalysisRecord summarizes one technique/video analysis.
type AnalysisRecord struct {
	ID      string  `json:"id"`
	Date    string  `json:"date"` // YYYY-MM-DD
	Score   float64 `json:"score"`
	Focus   string  `json:"focus,omitempty"`
	Summary string  `json:"summary,omitempty"`
}

// LinkStatus tracks a staff link request.
type LinkStatus string

const (
	LinkPending  LinkStatus = "PENDING"
	LinkAccepted LinkStatus = "ACCEPTED"
	LinkRejected LinkStatus = "REJECTED"
)

// LinkRequest is a pending or settled request from a staff member.
type LinkRequest struct {
	ID        string     `json:"id"`
	StaffID   string     `json:"staff_id"`
	StaffName string     `json:"staff_name,omitempty"`
	Role      string     `json:"role,omitempty"`
	Status    LinkStatus `json:"status"`
}

// StaffRef identifies a staff member assigned to an athlete.
type StaffRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// Athlete is the aggregate root. It is mutated exclusively by processors
// and persisted by the durable store; cached copies are read-only snapshots.
type Athlete struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Sport     string  `json:"sport,omitempty"`
	Status    Status  `json:"status"`
	LoadRatio float64 `json:"load_ratio"`
	Readiness int     `json:"readiness"`
	HRV       int     `json:"hrv"`
	HRVTrend  string  `json:"hrv_trend,omitempty"`

	LoadHistory     []LoadPoint      `json:"load_history,omitempty"`
	Injuries        []Injury         `json:"injuries,omitempty"`
	TherapyLog      []TherapyEntry   `json:"therapy_log,omitempty"`
	Competitions    []Competition    `json:"competitions,omitempty"`
	PerfStats       []PerfStat       `json:"perf_stats,omitempty"`
	DailyLogs       []DailyLog       `json:"daily_logs,omitempty"`
	AnalysisHistory []AnalysisRecord `json:"analysis_history,omitempty"`
	PendingRequests []LinkRequest    `json:"pending_requests,omitempty"`
	AssignedStaff   []StaffRef       `json:"assigned_staff,omitempty"`

	Profile map[string]any `json:"profile,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Loads flattens the load history into daily values, oldest first.
func (a *Athlete) Loads() []float64 {
	out := make([]float64, len(a.LoadHistory))
	for i, p := range a.LoadHistory {
		out[i] = p.Load
	}
	return out
}

// ActiveSevereInjuries counts active injuries with severity above the
// threshold that forces HIGH_RISK.
func (a *Athlete) ActiveSevereInjuries() int {
	n := 0
	for _, inj := range a.Injuries {
		if inj.Status == InjuryActive && inj.Severity > 2 {
			n++
		}
	}
	return n
}
