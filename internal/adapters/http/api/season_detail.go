// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
)

// SeasonDetailHandler handles per-season reads:
//
//	GET /seasons/{year}/outcome
//	GET /seasons/{year}/weeks
//	GET /seasons/{year}/standings?week=W
type SeasonDetailHandler struct {
	deps Dependencies
}

// NewSeasonDetailHandler creates a new season detail handler.
func NewSeasonDetailHandler(deps Dependencies) *SeasonDetailHandler {
	return &SeasonDetailHandler{deps: deps}
}

// HandleSeasonDetail dispatches GET /seasons/{year}/... requests.
func (h *SeasonDetailHandler) HandleSeasonDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/seasons/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	season, err := strconv.Atoi(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch parts[1] {
	case "outcome":
		h.handleOutcome(w, r, season)
	case "weeks":
		h.handleWeeks(w, r, season)
	case "standings":
		h.handleStandings(w, r, season)
	default:
		http.NotFound(w, r)
	}
}

func (h *SeasonDetailHandler) handleOutcome(w http.ResponseWriter, r *http.Request, season int) {
	outcome, err := h.deps.Outcome(r.Context(), season)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *SeasonDetailHandler) handleWeeks(w http.ResponseWriter, r *http.Request, season int) {
	weeks, err := h.deps.WeekResults(r.Context(), season)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (h *SeasonDetailHandler) handleStandings(w http.ResponseWriter, r *http.Request, season int) {
	weekStr := r.URL.Query().Get("week")
	week, err := strconv.Atoi(weekStr)
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	standings, err := h.deps.Standings(r.Context(), season, week)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}
