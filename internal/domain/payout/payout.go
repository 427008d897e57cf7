// Package payout turns a decided season's terminal state into final
// placements and prize amounts.
package payout

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rffl/korm/internal/domain/model"
)

// Prize fractions. The historical payout tables ($800/$300/$100 of a $1,200
// pool, $320/$120/$40 of the $480 pilot pool) are exact at 2/3 and 1/4 with
// the remainder going to third place, so the split always sums to the pool.
var (
	firstShareNum = decimal.NewFromInt(2)
	firstShareDen = decimal.NewFromInt(3)
	secondDen     = decimal.NewFromInt(4)
)

// paidPlaces is how deep the pool pays out.
const paidPlaces = 3

// Prizes returns the whole-unit prize amounts for places 1..paidPlaces.
func Prizes(pool int) []decimal.Decimal {
	p := decimal.NewFromInt(int64(pool))
	first := p.Mul(firstShareNum).DivRound(firstShareDen, 0)
	second := p.DivRound(secondDen, 0)
	third := p.Sub(first).Sub(second)
	return []decimal.Decimal{first, second, third}
}

// Finalize ranks every team of a decided season and attaches prizes.
// It must only be called for a genuine terminus, never for an as-of-week
// reconstruction of an undecided season.
func Finalize(states map[string]*model.TeamState, cfg model.SeasonConfig, finalWeek int, reason model.TerminationReason) (model.SeasonOutcome, error) {
	switch reason {
	case model.LastTeamStanding, model.WindowClosed, model.FieldEliminated:
	default:
		return model.SeasonOutcome{}, fmt.Errorf("season %d: reason %q: %w", cfg.Season, reason, ErrNotDecided)
	}
	if len(states) == 0 {
		return model.SeasonOutcome{}, fmt.Errorf("season %d: no team states: %w", cfg.Season, ErrNotDecided)
	}

	ranked := Rank(states)

	prizes := Prizes(cfg.Pool)
	placements := make([]model.Placement, len(ranked))
	for i, st := range ranked {
		prize := decimal.Zero
		if i < paidPlaces && i < len(prizes) {
			prize = prizes[i]
		}
		placements[i] = model.Placement{
			Place:           i + 1,
			Team:            st.Team,
			Strikes:         st.Strikes(),
			StrikeWeeks:     append([]int(nil), st.StrikeWeeks...),
			EliminationWeek: st.EliminationWeek,
			Prize:           prize,
		}
	}

	return model.SeasonOutcome{
		Season:     cfg.Season,
		Champion:   placements[0].Team,
		Placements: placements,
		FinalWeek:  finalWeek,
		Reason:     reason,
	}, nil
}

// Rank orders team states from best to worst finish. It also serves
// mid-season standings queries, where the same comparison puts the current
// leaders first and the earliest-eliminated teams last.
func Rank(states map[string]*model.TeamState) []*model.TeamState {
	ranked := make([]*model.TeamState, 0, len(states))
	for _, st := range states {
		ranked = append(ranked, st)
	}
	sort.Slice(ranked, func(i, j int) bool { return betterFinish(ranked[i], ranked[j]) })
	return ranked
}

// betterFinish orders final standings:
//  1. survivors above the eliminated; among survivors, fewer strikes first
//  2. among the eliminated, later elimination week first, then later first
//     strike (a longer unblemished run places higher)
//  3. ascending team code as the final, documented tie-break (no source
//     season ever needed it)
func betterFinish(a, b *model.TeamState) bool {
	if a.Alive() != b.Alive() {
		return a.Alive()
	}
	if a.Alive() {
		if a.Strikes() != b.Strikes() {
			return a.Strikes() < b.Strikes()
		}
	} else {
		if a.EliminationWeek != b.EliminationWeek {
			return a.EliminationWeek > b.EliminationWeek
		}
	}
	if a.FirstStrikeWeek() != b.FirstStrikeWeek() {
		return a.FirstStrikeWeek() > b.FirstStrikeWeek()
	}
	return a.Team < b.Team
}
