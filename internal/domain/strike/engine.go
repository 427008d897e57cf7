// Package strike implements the weekly strike engine: given the cumulative
// team states and one week of scores, it decides the strike mode, assigns
// strikes to the lowest scorers (ties included), and flips second-strike
// teams to eliminated. It performs no I/O and owns no state of its own.
package strike

import (
	"context"
	"fmt"
	"sort"

	"github.com/rffl/korm/internal/domain/model"
)

// Default engine rule constants, per the league's KORM rules.
const (
	// defaultTwoStrikeFloor is the minimum alive-team count for 2-strike mode.
	defaultTwoStrikeFloor = 5
	// defaultStrikesToEliminate is the strike count that ends a team's run.
	defaultStrikesToEliminate = 2
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTwoStrikeFloor overrides the alive-team count at which the engine
// issues two strikes per week instead of one.
func WithTwoStrikeFloor(n int) Option {
	return func(e *Engine) {
		if n > 1 {
			e.twoStrikeFloor = n
		}
	}
}

// WithStrikesToEliminate overrides the number of strikes that eliminates.
func WithStrikesToEliminate(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.strikesToEliminate = n
		}
	}
}

// Engine applies one week of competition to a set of team states.
type Engine struct {
	twoStrikeFloor     int
	strikesToEliminate int
}

// New creates an Engine with the standard KORM rules.
func New(opts ...Option) *Engine {
	e := &Engine{
		twoStrikeFloor:     defaultTwoStrikeFloor,
		strikesToEliminate: defaultStrikesToEliminate,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ModeFor returns the strike mode for a week entered with alive teams still
// competing. The count is measured before the week's eliminations and the
// mode holds for the whole week.
func (e *Engine) ModeFor(alive int) model.StrikeMode {
	if alive >= e.twoStrikeFloor {
		return model.TwoStrike
	}
	return model.OneStrike
}

// ApplyWeek processes one week. states holds every roster team keyed by
// code; scores must hold exactly one entry per still-alive team. On success
// the struck teams' states have been mutated and the returned WeekResult is
// the full auditable record. On any input mismatch no state is modified.
func (e *Engine) ApplyWeek(ctx context.Context, states map[string]*model.TeamState, scores map[string]float64, week int) (model.WeekResult, error) {
	if err := ctx.Err(); err != nil {
		return model.WeekResult{}, fmt.Errorf("apply week %d: %w", week, err)
	}

	alive := make([]string, 0, len(states))
	for code, st := range states {
		if st.Alive() {
			alive = append(alive, code)
		}
	}
	if len(alive) == 0 {
		return model.WeekResult{}, fmt.Errorf("week %d: no alive teams: %w", week, ErrInvariant)
	}

	// Validate before touching any state: one score per alive team, none else.
	for _, code := range alive {
		if _, ok := scores[code]; !ok {
			return model.WeekResult{}, fmt.Errorf("week %d: team %q: %w", week, code, ErrMissingScore)
		}
	}
	for code := range scores {
		st, ok := states[code]
		if !ok || !st.Alive() {
			return model.WeekResult{}, fmt.Errorf("week %d: team %q: %w", week, code, ErrUnexpectedScore)
		}
	}

	mode := e.ModeFor(len(alive))

	// Ascending by score; equal scores order by code so results are stable.
	ascending := append([]string(nil), alive...)
	sort.Slice(ascending, func(i, j int) bool {
		si, sj := scores[ascending[i]], scores[ascending[j]]
		if si != sj {
			return si < sj
		}
		return ascending[i] < ascending[j]
	})

	// Threshold is the score at rank k. Every team at or below it strikes,
	// so ties can push the struck count past the mode's nominal figure.
	k := int(mode)
	if k > len(ascending) {
		k = len(ascending)
	}
	threshold := scores[ascending[k-1]]

	struck := make([]string, 0, k)
	for _, code := range ascending {
		if scores[code] <= threshold {
			struck = append(struck, code)
		}
	}

	eliminated := make([]string, 0)
	for _, code := range struck {
		st := states[code]
		if st.Strikes() >= e.strikesToEliminate {
			// Cannot happen: a team at the limit is eliminated and excluded
			// from the alive set. Abort loudly, this is an engine bug.
			return model.WeekResult{}, fmt.Errorf("week %d: team %q already has %d strikes: %w",
				week, code, st.Strikes(), ErrInvariant)
		}
		st.StrikeWeeks = append(st.StrikeWeeks, week)
		if st.Strikes() >= e.strikesToEliminate {
			st.Status = model.StatusEliminated
			st.EliminationWeek = week
			eliminated = append(eliminated, code)
		} else {
			st.Status = model.StatusOnNotice
		}
	}

	// Ranking is reported best-first.
	ranking := make([]model.RankedScore, len(ascending))
	for i, code := range ascending {
		pos := len(ascending) - 1 - i
		ranking[pos] = model.RankedScore{
			Rank:   pos + 1,
			Team:   code,
			Score:  scores[code],
			Status: states[code].Status,
		}
	}

	return model.WeekResult{
		Week:          week,
		AliveEntering: len(alive),
		Mode:          mode,
		Ranking:       ranking,
		Struck:        struck,
		Eliminated:    eliminated,
	}, nil
}
