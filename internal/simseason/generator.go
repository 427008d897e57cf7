package simseason

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/rffl/korm/internal/domain/model"
	"github.com/rffl/korm/internal/domain/strike"
	"github.com/rffl/korm/pkg/logger"
)

// Score generation ranges, roughly matching real fantasy weekly totals.
const (
	baseScoreMin   = 60.0
	baseScoreRange = 80.0
	tieChance      = 0.02 // occasionally duplicate a score to exercise ties
)

// generateSeason builds a synthetic season config and a valid score table
// for it. Eliminated teams must not report scores in later weeks, so the
// generator runs its own strike engine while emitting rows, and stops
// emitting weeks once at most one team remains. Scores are quantized to 2
// decimals, matching the engine's exact-equality tie semantics.
func generateSeason(ctx context.Context, cfg *Config) (model.SeasonConfig, []model.WeekScore, error) {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seed for reproducible runs

	roster := make([]string, 0, cfg.Teams)
	seen := make(map[string]struct{}, cfg.Teams)
	for len(roster) < cfg.Teams {
		// 4-char codes in the league's style, derived from uuids.
		code := strings.ToUpper(uuid.New().String()[:4])
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		roster = append(roster, code)
	}

	season := model.SeasonConfig{
		Season:    cfg.Season,
		EntryFee:  cfg.EntryFee,
		Pool:      cfg.EntryFee * cfg.Teams,
		FirstWeek: cfg.FirstWeek,
		LastWeek:  cfg.LastWeek,
		Roster:    roster,
	}

	engine := strike.New()
	states := make(map[string]*model.TeamState, len(roster))
	for _, code := range roster {
		states[code] = model.NewTeamState(code)
	}

	var rows []model.WeekScore
	weeks := 0
	for week := cfg.FirstWeek; week <= cfg.LastWeek; week++ {
		scores := make(map[string]float64)
		var prev float64
		first := true
		for _, team := range roster {
			if !states[team].Alive() {
				continue
			}
			score := quantize(baseScoreMin + rng.Float64()*baseScoreRange)
			if !first && rng.Float64() < tieChance {
				score = prev
			}
			first = false
			prev = score
			scores[team] = score
			rows = append(rows, model.WeekScore{Week: week, Team: team, Score: score})
		}

		if _, err := engine.ApplyWeek(ctx, states, scores, week); err != nil {
			return model.SeasonConfig{}, nil, fmt.Errorf("generate week %d: %w", week, err)
		}
		weeks++

		if alive(states) <= 1 {
			break
		}
	}

	logger.Get().Info(ctx, "generated season",
		logger.Int("season", season.Season),
		logger.Int("teams", len(roster)),
		logger.Int("weeks", weeks),
		logger.String("window", fmt.Sprintf("%d-%d", cfg.FirstWeek, cfg.LastWeek)),
	)
	return season, rows, nil
}

func alive(states map[string]*model.TeamState) int {
	n := 0
	for _, st := range states {
		if st.Alive() {
			n++
		}
	}
	return n
}

func quantize(v float64) float64 {
	return math.Round(v*100) / 100
}
