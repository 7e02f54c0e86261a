// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// AthleteDependencies defines the interface for athlete read and plan
// operations.
type AthleteDependencies interface {
	GetAthlete(id string) (*model.Athlete, bool)
	GetAllAthletes() []*model.Athlete
	GetWeeklyPlan(athleteID string) (*model.WeeklyPlan, bool)
	RegeneratePlan(ctx context.Context, athleteID string, phase model.Phase) (*model.WeeklyPlan, error)
}

// AthleteHandler handles athlete requests.
type AthleteHandler struct {
	deps AthleteDependencies
}

// NewAthleteHandler creates a new athlete handler.
func NewAthleteHandler(deps AthleteDependencies) *AthleteHandler {
	return &AthleteHandler{deps: deps}
}

// HandleListAthletes handles GET /athletes requests.
func (h *AthleteHandler) HandleListAthletes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.GetAllAthletes())
}

// regenerateRequest is the body for POST /athletes/{id}/plan/regenerate.
type regenerateRequest struct {
	Phase string `json:"phase,omitempty"`
}

// HandleAthleteSubtree routes requests under /athletes/{id}:
//
//	GET  /athletes/{id}                 one athlete
//	GET  /athletes/{id}/plan            the athlete's weekly plan
//	POST /athletes/{id}/plan/regenerate fresh plan via the rule engine
func (h *AthleteHandler) HandleAthleteSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/athletes/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	id, rest, _ := strings.Cut(path, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleGetAthlete(w, id)
	case rest == "plan" && r.Method == http.MethodGet:
		h.handleGetPlan(w, id)
	case rest == "plan/regenerate" && r.Method == http.MethodPost:
		h.handleRegenerate(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *AthleteHandler) handleGetAthlete(w http.ResponseWriter, id string) {
	a, ok := h.deps.GetAthlete(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrAthleteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AthleteHandler) handleGetPlan(w http.ResponseWriter, id string) {
	if _, ok := h.deps.GetAthlete(id); !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrAthleteNotFound)
		return
	}
	plan, ok := h.deps.GetWeeklyPlan(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrPlanNotFound)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *AthleteHandler) handleRegenerate(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.deps.GetAthlete(id); !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrAthleteNotFound)
		return
	}

	var req regenerateRequest
	if r.Body != nil {
		// An empty body keeps the current plan's phase.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	phase := model.Phase(req.Phase)
	if req.Phase != "" && !phase.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if req.Phase == "" {
		if current, ok := h.deps.GetWeeklyPlan(id); ok {
			phase = current.Phase
		} else {
			phase = model.PhasePreSeason
		}
	}

	plan, err := h.deps.RegeneratePlan(r.Context(), id, phase)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusServiceUnavailable, "plan_unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
