// Package risk maps an athlete's current metrics and status to a new derived
// status. Both functions here are pure; callers apply the results to the
// aggregate.
package risk

import "github.com/athlos-ai/athlos/internal/domain/model"

// Escalation and alert thresholds.
const (
	painEscalate     = 4
	rpeEscalate      = 8
	ratioEscalate    = 1.5
	painCombined     = 2
	rpeCombined      = 6
	ratioCombined    = 1.3
	painRecovered    = 0
	rpeRecovered     = 5
	painAlert        = 5
	painAlertCombo   = 3
	rpeAlertCombo    = 8
	ratioAlert       = 1.7
	hrvFloor         = 30
	hrvCeiling       = 100
	hrvRecoveryBoost = 5
	goodSleep        = 8
)

// Metrics carries the inputs of one evaluation. RPE and SleepQuality are
// optional; nil means not reported and is treated as zero where compared.
type Metrics struct {
	Pain         int // 0..10
	RPE          *int
	LoadRatio    float64
	SleepQuality *int
}

func (m Metrics) rpe() int {
	if m.RPE == nil {
		return 0
	}
	return *m.RPE
}

func (m Metrics) sleep() int {
	if m.SleepQuality == nil {
		return 0
	}
	return *m.SleepQuality
}

// Next returns the new status for the given current status and metrics, plus
// whether an external alert should fire. The alert flag is independent of the
// status transition.
//
// Escalation rules are checked first-match-wins; if none match the status
// de-escalates one step at most: HIGH_RISK always drops to CAUTION, CAUTION
// drops to OPTIMAL only on a clean report (no pain, RPE below 5).
func Next(current model.Status, m Metrics) (model.Status, bool) {
	alert := m.Pain >= painAlert ||
		(m.Pain >= painAlertCombo && m.rpe() >= rpeAlertCombo) ||
		m.LoadRatio >= ratioAlert

	if Escalates(m) {
		return model.StatusHighRisk, alert
	}

	switch current {
	case model.StatusHighRisk:
		return model.StatusCaution, alert
	case model.StatusCaution:
		if m.Pain == painRecovered && m.rpe() < rpeRecovered {
			return model.StatusOptimal, alert
		}
	}
	return current, alert
}

// Escalates reports whether the metrics trip any escalation rule.
func Escalates(m Metrics) bool {
	switch {
	case m.Pain >= painEscalate:
		return true
	case m.rpe() >= rpeEscalate:
		return true
	case m.LoadRatio >= ratioEscalate:
		return true
	case (m.Pain >= painCombined && m.rpe() >= rpeCombined) || m.LoadRatio > ratioCombined:
		return true
	}
	return false
}

// AdjustHRV derives the new HRV proxy after a transition. Escalation drains
// it by pain*2 + RPE (+10 on a hot load ratio), floored at 30; de-escalation
// with good sleep restores 5 points, capped at 100.
func AdjustHRV(hrv int, escalated bool, m Metrics) int {
	if escalated {
		drop := m.Pain*2 + m.rpe()
		if m.LoadRatio > ratioEscalate {
			drop += 10
		}
		hrv -= drop
		if hrv < hrvFloor {
			hrv = hrvFloor
		}
		return hrv
	}
	if m.sleep() >= goodSleep {
		hrv += hrvRecoveryBoost
		if hrv > hrvCeiling {
			hrv = hrvCeiling
		}
	}
	return hrv
}
