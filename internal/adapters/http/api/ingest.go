// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// IngestDependencies defines the interface for ingestion dependencies.
type IngestDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	IngestData(ctx context.Context, source string, dataType model.DataType, payload json.RawMessage) error
}

// IngestHandler handles ingestion requests.
type IngestHandler struct {
	deps IngestDependencies
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps IngestDependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// HandlePostIngest handles POST /ingest requests.
func (h *IngestHandler) HandlePostIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}
	if err := h.deps.IngestData(r.Context(), source, model.DataType(req.Type), req.Payload); err != nil {
		// Rollback the "seen" status since processing failed
		h.deps.Unrecord(r.Context(), req.EventID)
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "processed", Duplicate: false})
}
