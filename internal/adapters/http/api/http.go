// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rffl/korm/internal/adapters/repository"
	"github.com/rffl/korm/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitSeason queues a season for replay. accepted=false with a nil
	// error signals backpressure.
	SubmitSeason(ctx context.Context, cfg model.SeasonConfig, rows []model.WeekScore) (accepted, duplicate bool, err error)

	// Read operations expose replay results.
	Standings(ctx context.Context, season, week int) (model.Standings, error)
	WeekResults(ctx context.Context, season int) ([]model.WeekResult, error)
	Outcome(ctx context.Context, season int) (model.SeasonOutcome, error)
	Seasons(ctx context.Context) ([]int, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	seasonsHandler *SeasonsHandler
	detailHandler  *SeasonDetailHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, stats StatsSource) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(stats),
		seasonsHandler: NewSeasonsHandler(deps),
		detailHandler:  NewSeasonDetailHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/seasons", MetricsMiddleware(s.seasonsHandler.HandleSeasons, "seasons"))
	mux.HandleFunc("/seasons/", MetricsMiddleware(s.detailHandler.HandleSeasonDetail, "season_detail"))
}

// submitRequest mirrors the POST /seasons body: a season config plus its
// complete weekly score rows.
type submitRequest struct {
	model.SeasonConfig
	Scores []model.WeekScore `json:"scores"`
}

func (s submitRequest) validate() error {
	if len(s.Scores) == 0 {
		return errors.New("missing scores")
	}
	// Structural config problems surface via SeasonConfig.Validate in the
	// service; only transport-level shape is checked here.
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Season    int    `json:"season"`
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
	return errors.Is(err, repository.ErrNotFound)
}
