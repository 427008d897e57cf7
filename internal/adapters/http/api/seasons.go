// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// SeasonsHandler handles the /seasons collection: submission and listing.
type SeasonsHandler struct {
	deps Dependencies
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(deps Dependencies) *SeasonsHandler {
	return &SeasonsHandler{deps: deps}
}

// HandleSeasons handles POST /seasons and GET /seasons.
func (h *SeasonsHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SeasonsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	accepted, duplicate, err := h.deps.SubmitSeason(r.Context(), req.SeasonConfig, req.Scores)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Season: req.Season, Duplicate: true})
		return
	}
	if !accepted {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Season: req.Season})
}

func (h *SeasonsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	years, err := h.deps.Seasons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, years)
}
