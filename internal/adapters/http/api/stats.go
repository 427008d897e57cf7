package api

import "net/http"

// StatsSource reports the service's runtime counters (queue depth, worker
// configuration, stored season count). The handler serves the map verbatim;
// key names are owned by the service layer.
type StatsSource interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats, a plain-JSON operational snapshot next to
// the Prometheus scrape on /healthz.
type StatsHandler struct {
	source StatsSource
}

// NewStatsHandler wraps a stats source for route registration.
func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{source: source}
}

// HandleStats answers GET requests; anything else is a 404.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.source.GetStats())
}
