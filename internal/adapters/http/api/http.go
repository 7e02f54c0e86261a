// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/athlos-ai/athlos/internal/adapters/store"
	"github.com/athlos-ai/athlos/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the orchestration service.
type Dependencies interface {
	// SeenAndRecord atomically checks and records an event id. Returns true
	// if the id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an event id so the event can be retried.
	Unrecord(ctx context.Context, id string)

	// IngestData runs one payload through its processor.
	IngestData(ctx context.Context, source string, dataType model.DataType, payload json.RawMessage) error

	// Read operations expose the cached athlete state.
	GetAthlete(id string) (*model.Athlete, bool)
	GetAllAthletes() []*model.Athlete
	GetWeeklyPlan(athleteID string) (*model.WeeklyPlan, bool)

	// RegeneratePlan produces and persists a fresh weekly plan.
	RegeneratePlan(ctx context.Context, athleteID string, phase model.Phase) (*model.WeeklyPlan, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	ingestHandler  *IngestHandler
	athleteHandler *AthleteHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		ingestHandler:  NewIngestHandler(deps),
		athleteHandler: NewAthleteHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ingest", MetricsMiddleware(s.ingestHandler.HandlePostIngest, "ingest"))
	mux.HandleFunc("/athletes", MetricsMiddleware(s.athleteHandler.HandleListAthletes, "athletes"))
	mux.HandleFunc("/athletes/", MetricsMiddleware(s.athleteHandler.HandleAthleteSubtree, "athletes"))
}

// ingestRequest is the envelope for POST /ingest.
type ingestRequest struct {
	EventID string          `json:"event_id"`
	Source  string          `json:"source,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (e ingestRequest) validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(e.Type) == "":
		return errors.New("missing type")
	case len(e.Payload) == 0:
		return errors.New("missing payload")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
