// Package repository defines the season store interface and its backends.
// The store keeps submitted season inputs (for as-of-week reconstruction)
// and the computed replay results; it never computes anything itself.
package repository

import (
	"context"

	"github.com/rffl/korm/internal/domain/model"
)

// Store provides read/write access to season inputs and replay results.
type Store interface {
	// SaveSeason records a submitted season's config and score rows.
	SaveSeason(ctx context.Context, cfg model.SeasonConfig, rows []model.WeekScore) error

	// Season returns the stored inputs for a season.
	// Returns ErrNotFound for an unknown season.
	Season(ctx context.Context, season int) (model.SeasonConfig, []model.WeekScore, error)

	// SaveResult records a decided season's week results and outcome.
	SaveResult(ctx context.Context, season int, weeks []model.WeekResult, outcome model.SeasonOutcome) error

	// Weeks returns the per-week results of a replayed season.
	// Returns ErrNotFound until the season's replay has completed.
	Weeks(ctx context.Context, season int) ([]model.WeekResult, error)

	// Outcome returns the final placements and payouts of a replayed season.
	// Returns ErrNotFound until the season's replay has completed.
	Outcome(ctx context.Context, season int) (model.SeasonOutcome, error)

	// Seasons lists the years with stored inputs, ascending.
	Seasons(ctx context.Context) ([]int, error)

	// Count returns the number of stored seasons.
	Count(ctx context.Context) int
}
