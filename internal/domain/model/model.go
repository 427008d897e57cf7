// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Status tracks where a team stands in the elimination competition.
type Status string

// Team lifecycle states. A team is created active, moves to on-notice at
// one strike, and is eliminated at two. Elimination is terminal.
const (
	StatusActive     Status = "active"
	StatusOnNotice   Status = "on_notice"
	StatusEliminated Status = "eliminated"
)

// StrikeMode is the number of strikes issued per week, driven by the count
// of teams still alive entering the week.
type StrikeMode int

const (
	// OneStrike applies when 4 or fewer teams are alive: bottom score struck.
	OneStrike StrikeMode = 1
	// TwoStrike applies when 5 or more teams are alive: bottom two struck.
	TwoStrike StrikeMode = 2
)

func (m StrikeMode) String() string {
	if m == TwoStrike {
		return "2-strike"
	}
	return "1-strike"
}

// TerminationReason explains why a season replay reached its end state.
type TerminationReason string

const (
	// LastTeamStanding means exactly one team survived before the window closed.
	LastTeamStanding TerminationReason = "last_team_standing"
	// WindowClosed means the final configured week was processed with two or
	// more teams still alive.
	WindowClosed TerminationReason = "window_closed"
	// FieldEliminated means a bottom tie struck out every remaining team in
	// the same week, leaving no survivor. Final placements still apply.
	FieldEliminated TerminationReason = "field_eliminated"
)

// SeasonConfig describes one season's competition parameters. It is
// caller-supplied and treated as read-only by the engine.
type SeasonConfig struct {
	Season    int      `json:"season" koanf:"season"`
	EntryFee  int      `json:"entry_fee" koanf:"entry_fee"`
	Pool      int      `json:"pool" koanf:"pool"`
	FirstWeek int      `json:"first_week" koanf:"first_week"`
	LastWeek  int      `json:"last_week" koanf:"last_week"`
	Roster    []string `json:"roster" koanf:"roster"`
}

// Config validation sentinels. Surfaced before any replay begins.
var (
	ErrEmptyRoster   = errors.New("roster must not be empty")
	ErrDuplicateTeam = errors.New("duplicate team code in roster")
	ErrBadWindow     = errors.New("invalid week window")
	ErrBadPool       = errors.New("pool must be positive")
)

// Validate checks the config for structural problems that would make a
// replay meaningless. Pool = fee x teams is assumed consistent upstream and
// deliberately not enforced here.
func (c SeasonConfig) Validate() error {
	if len(c.Roster) == 0 {
		return fmt.Errorf("season %d: %w", c.Season, ErrEmptyRoster)
	}
	seen := make(map[string]struct{}, len(c.Roster))
	for _, code := range c.Roster {
		if code == "" {
			return fmt.Errorf("season %d: empty team code: %w", c.Season, ErrDuplicateTeam)
		}
		if _, ok := seen[code]; ok {
			return fmt.Errorf("season %d: team %q: %w", c.Season, code, ErrDuplicateTeam)
		}
		seen[code] = struct{}{}
	}
	if c.FirstWeek < 1 || c.LastWeek < c.FirstWeek {
		return fmt.Errorf("season %d: weeks %d-%d: %w", c.Season, c.FirstWeek, c.LastWeek, ErrBadWindow)
	}
	if c.Pool <= 0 {
		return fmt.Errorf("season %d: pool %d: %w", c.Season, c.Pool, ErrBadPool)
	}
	if c.EntryFee < 0 {
		return fmt.Errorf("season %d: entry fee %d: %w", c.Season, c.EntryFee, ErrBadPool)
	}
	return nil
}

// WeekScore is one caller-supplied score row: what a team actually scored in
// a given week.
type WeekScore struct {
	Week  int     `json:"week"`
	Team  string  `json:"team"`
	Score float64 `json:"score"`
}

// TeamState is a team's cumulative record during a replay. It is owned and
// mutated exclusively by the replayer; strike weeks are appended in order.
type TeamState struct {
	Team            string `json:"team"`
	StrikeWeeks     []int  `json:"strike_weeks"`
	Status          Status `json:"status"`
	EliminationWeek int    `json:"elimination_week,omitempty"`
}

// NewTeamState returns the week-one state for a roster entry.
func NewTeamState(team string) *TeamState {
	return &TeamState{Team: team, Status: StatusActive}
}

// Strikes returns the number of strikes accumulated so far.
func (s *TeamState) Strikes() int { return len(s.StrikeWeeks) }

// Alive reports whether the team still competes (active or on notice).
func (s *TeamState) Alive() bool { return s.Status != StatusEliminated }

// FirstStrikeWeek returns the week of the first strike, or 0 if none.
func (s *TeamState) FirstStrikeWeek() int {
	if len(s.StrikeWeeks) == 0 {
		return 0
	}
	return s.StrikeWeeks[0]
}

// Clone returns an independent copy, so reported standings cannot alias the
// replayer's private state.
func (s *TeamState) Clone() *TeamState {
	cp := *s
	cp.StrikeWeeks = append([]int(nil), s.StrikeWeeks...)
	return &cp
}

// RankedScore is one row of a week's ranking: the team's score and the
// status it held once the week's strikes were applied.
type RankedScore struct {
	Rank   int     `json:"rank"`
	Team   string  `json:"team"`
	Score  float64 `json:"score"`
	Status Status  `json:"status"`
}

// WeekResult is the complete auditable record of one processed week.
type WeekResult struct {
	Week          int           `json:"week"`
	AliveEntering int           `json:"alive_entering"`
	Mode          StrikeMode    `json:"strike_mode"`
	Ranking       []RankedScore `json:"ranking"`
	Struck        []string      `json:"struck"`
	Eliminated    []string      `json:"eliminated"`
}

// Placement is one row of the final standings.
type Placement struct {
	Place           int             `json:"place"`
	Team            string          `json:"team"`
	Strikes         int             `json:"strikes"`
	StrikeWeeks     []int           `json:"strike_weeks"`
	EliminationWeek int             `json:"elimination_week,omitempty"`
	Prize           decimal.Decimal `json:"prize"`
}

// Standings is a point-in-time reconstruction of a season, produced by a
// truncated replay. Reason is empty while the competition is undecided as
// of Week.
type Standings struct {
	Season int               `json:"season"`
	Week   int               `json:"week"`
	Reason TerminationReason `json:"reason,omitempty"`
	Teams  []TeamState       `json:"teams"`
}

// SeasonOutcome is the terminal result of a decided season.
type SeasonOutcome struct {
	Season     int               `json:"season"`
	Champion   string            `json:"champion"`
	Placements []Placement       `json:"placements"`
	FinalWeek  int               `json:"final_week"`
	Reason     TerminationReason `json:"reason"`
}
