// Package replay drives the strike engine across a season's weeks in order,
// producing the per-week results and terminal team states. Reconstructing
// standings as of a past week is the same replay truncated early, so
// historical standings can never drift from the full-season replay.
package replay

import (
	"context"
	"fmt"

	"github.com/rffl/korm/internal/domain/model"
	"github.com/rffl/korm/internal/domain/strike"
)

// ScoreTable holds a season's scores keyed week -> team -> score.
type ScoreTable map[int]map[string]float64

// NewScoreTable builds a table from caller-supplied rows, rejecting
// duplicate (week, team) keys.
func NewScoreTable(rows []model.WeekScore) (ScoreTable, error) {
	table := make(ScoreTable)
	for _, row := range rows {
		weekScores, ok := table[row.Week]
		if !ok {
			weekScores = make(map[string]float64)
			table[row.Week] = weekScores
		}
		if _, dup := weekScores[row.Team]; dup {
			return nil, fmt.Errorf("week %d: team %q: %w", row.Week, row.Team, ErrDuplicateScore)
		}
		weekScores[row.Team] = row.Score
	}
	return table, nil
}

// Result is the output of one replay pass.
type Result struct {
	Weeks  []model.WeekResult
	States map[string]*model.TeamState
	// FinalWeek is the last week actually processed.
	FinalWeek int
	// Reason is set only when the season genuinely ended: a last team
	// standing, the whole field struck out, or the window closing. A
	// truncated replay that stops mid-season leaves it empty, meaning the
	// competition is still undecided at that point.
	Reason model.TerminationReason
}

// Option applies a configuration option to the Replayer.
type Option func(*Replayer)

// WithEngine sets a custom strike engine, e.g. with non-standard rule
// thresholds.
func WithEngine(e *strike.Engine) Option {
	return func(r *Replayer) {
		if e != nil {
			r.engine = e
		}
	}
}

// Replayer runs seasons through the strike engine. It holds no per-season
// state; concurrent replays of different seasons are independent.
type Replayer struct {
	engine *strike.Engine
}

// New creates a Replayer with the standard engine.
func New(opts ...Option) *Replayer {
	r := &Replayer{engine: strike.New()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Replay processes the whole configured window (stopping early once at most
// one team remains) and returns the season's complete record.
func (r *Replayer) Replay(ctx context.Context, cfg model.SeasonConfig, table ScoreTable) (*Result, error) {
	return r.ReplayThrough(ctx, cfg, table, cfg.LastWeek)
}

// ReplayThrough processes weeks FirstWeek..min(LastWeek, stopAt). The
// returned state reflects exactly the processed prefix, with no knowledge
// of later weeks.
func (r *Replayer) ReplayThrough(ctx context.Context, cfg model.SeasonConfig, table ScoreTable, stopAt int) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if stopAt < cfg.FirstWeek {
		return nil, fmt.Errorf("season %d: stop week %d before window start %d: %w",
			cfg.Season, stopAt, cfg.FirstWeek, ErrBadStopWeek)
	}

	states := make(map[string]*model.TeamState, len(cfg.Roster))
	for _, code := range cfg.Roster {
		states[code] = model.NewTeamState(code)
	}

	lastWeek := cfg.LastWeek
	if stopAt < lastWeek {
		lastWeek = stopAt
	}

	res := &Result{States: states}
	for week := cfg.FirstWeek; week <= lastWeek; week++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("season %d: %w", cfg.Season, err)
		}

		wr, err := r.engine.ApplyWeek(ctx, states, table[week], week)
		if err != nil {
			return nil, fmt.Errorf("season %d: %w", cfg.Season, err)
		}
		res.Weeks = append(res.Weeks, wr)
		res.FinalWeek = week

		// The season ends the moment at most one team survives, regardless of
		// how many weeks remain in the window. Zero survivors is legal input:
		// a bottom tie can strike out the entire remaining field at once.
		if alive := aliveCount(states); alive <= 1 {
			res.Reason = model.LastTeamStanding
			if alive == 0 {
				res.Reason = model.FieldEliminated
			}
			return res, nil
		}
	}

	if res.FinalWeek == cfg.LastWeek {
		res.Reason = model.WindowClosed
	}
	return res, nil
}

func aliveCount(states map[string]*model.TeamState) int {
	n := 0
	for _, st := range states {
		if st.Alive() {
			n++
		}
	}
	return n
}
