package api

import (
	"net/http"
)

// StatsProvider reports the service's runtime counters.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves the ops-facing counters endpoint.
type StatsHandler struct {
	provider StatsProvider
}

func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
