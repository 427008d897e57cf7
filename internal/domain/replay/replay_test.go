package replay_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rffl/korm/internal/domain/model"
	"github.com/rffl/korm/internal/domain/replay"
	"github.com/rffl/korm/internal/domain/strike"
)

// fiveTeamSeason is a hand-computed fixture. With five teams the opening
// weeks run in 2-strike mode; eliminations shrink the field to 1-strike mode
// and the last survivor ends the season early.
//
// Week 1: EEEE and DDDD struck (bottom two of five).
// Week 2: DDDD struck again (eliminated) alongside CCCC.
// Week 3: four alive, 1-strike mode, EEEE struck again (eliminated).
// Week 4: three alive, CCCC struck again (eliminated).
// Week 5: AAAA vs BBBB, BBBB takes its first strike.
// Week 6: BBBB loses again (eliminated); AAAA is the last team standing.
func fiveTeamSeason() (model.SeasonConfig, []model.WeekScore) {
	cfg := model.SeasonConfig{
		Season:    2030,
		EntryFee:  100,
		Pool:      500,
		FirstWeek: 1,
		LastWeek:  14,
		Roster:    []string{"AAAA", "BBBB", "CCCC", "DDDD", "EEEE"},
	}
	rows := []model.WeekScore{
		{Week: 1, Team: "AAAA", Score: 130}, {Week: 1, Team: "BBBB", Score: 120},
		{Week: 1, Team: "CCCC", Score: 110}, {Week: 1, Team: "DDDD", Score: 100},
		{Week: 1, Team: "EEEE", Score: 90},

		{Week: 2, Team: "AAAA", Score: 125}, {Week: 2, Team: "BBBB", Score: 115},
		{Week: 2, Team: "CCCC", Score: 95}, {Week: 2, Team: "DDDD", Score: 85},
		{Week: 2, Team: "EEEE", Score: 105},

		{Week: 3, Team: "AAAA", Score: 120}, {Week: 3, Team: "BBBB", Score: 110},
		{Week: 3, Team: "CCCC", Score: 100}, {Week: 3, Team: "EEEE", Score: 90},

		{Week: 4, Team: "AAAA", Score: 118}, {Week: 4, Team: "BBBB", Score: 108},
		{Week: 4, Team: "CCCC", Score: 98},

		{Week: 5, Team: "AAAA", Score: 116}, {Week: 5, Team: "BBBB", Score: 96},

		{Week: 6, Team: "AAAA", Score: 114}, {Week: 6, Team: "BBBB", Score: 94},
	}
	return cfg, rows
}

func TestNewScoreTable(t *testing.T) {
	Convey("Given caller-supplied score rows", t, func() {
		Convey("When the rows are unique", func() {
			table, err := replay.NewScoreTable([]model.WeekScore{
				{Week: 1, Team: "AAAA", Score: 100},
				{Week: 1, Team: "BBBB", Score: 90},
				{Week: 2, Team: "AAAA", Score: 80},
			})

			Convey("Then the table is keyed week then team", func() {
				So(err, ShouldBeNil)
				So(table, ShouldHaveLength, 2)
				So(table[1]["BBBB"], ShouldEqual, 90.0)
				So(table[2]["AAAA"], ShouldEqual, 80.0)
			})
		})

		Convey("When a (week, team) pair repeats", func() {
			_, err := replay.NewScoreTable([]model.WeekScore{
				{Week: 1, Team: "AAAA", Score: 100},
				{Week: 1, Team: "AAAA", Score: 101},
			})

			Convey("Then it fails with ErrDuplicateScore", func() {
				So(err, ShouldWrap, replay.ErrDuplicateScore)
			})
		})
	})
}

func TestReplayer_Replay(t *testing.T) {
	Convey("Given a season decided before the window closes", t, func() {
		cfg, rows := fiveTeamSeason()
		table, err := replay.NewScoreTable(rows)
		So(err, ShouldBeNil)

		Convey("When the full season is replayed", func() {
			res, err := replay.New().Replay(context.Background(), cfg, table)

			Convey("Then it stops at the last-team-standing week", func() {
				So(err, ShouldBeNil)
				So(res.FinalWeek, ShouldEqual, 6)
				So(res.Reason, ShouldEqual, model.LastTeamStanding)
				So(res.Weeks, ShouldHaveLength, 6)
			})

			Convey("Then the strike modes follow the alive count", func() {
				So(err, ShouldBeNil)
				So(res.Weeks[0].Mode, ShouldEqual, model.TwoStrike)
				So(res.Weeks[1].Mode, ShouldEqual, model.TwoStrike)
				So(res.Weeks[2].Mode, ShouldEqual, model.OneStrike)
				So(res.Weeks[2].AliveEntering, ShouldEqual, 4)
			})

			Convey("Then the terminal states match the fixture", func() {
				So(err, ShouldBeNil)
				So(res.States["AAAA"].Status, ShouldEqual, model.StatusActive)
				So(res.States["AAAA"].Strikes(), ShouldEqual, 0)
				So(res.States["BBBB"].Status, ShouldEqual, model.StatusEliminated)
				So(res.States["BBBB"].StrikeWeeks, ShouldResemble, []int{5, 6})
				So(res.States["BBBB"].EliminationWeek, ShouldEqual, 6)
				So(res.States["CCCC"].EliminationWeek, ShouldEqual, 4)
				So(res.States["DDDD"].EliminationWeek, ShouldEqual, 2)
				So(res.States["EEEE"].EliminationWeek, ShouldEqual, 3)
			})
		})
	})

	Convey("Given a window that closes with several teams alive", t, func() {
		cfg := model.SeasonConfig{
			Season: 2031, Pool: 600, FirstWeek: 1, LastWeek: 2,
			Roster: []string{"AAAA", "BBBB", "CCCC", "DDDD", "EEEE", "FFFF"},
		}
		rows := []model.WeekScore{
			{Week: 1, Team: "AAAA", Score: 130}, {Week: 1, Team: "BBBB", Score: 125},
			{Week: 1, Team: "CCCC", Score: 120}, {Week: 1, Team: "DDDD", Score: 115},
			{Week: 1, Team: "EEEE", Score: 100}, {Week: 1, Team: "FFFF", Score: 95},
			{Week: 2, Team: "AAAA", Score: 128}, {Week: 2, Team: "BBBB", Score: 123},
			{Week: 2, Team: "CCCC", Score: 118}, {Week: 2, Team: "DDDD", Score: 113},
			{Week: 2, Team: "EEEE", Score: 108}, {Week: 2, Team: "FFFF", Score: 103},
		}
		table, err := replay.NewScoreTable(rows)
		So(err, ShouldBeNil)

		Convey("When the full season is replayed", func() {
			res, err := replay.New().Replay(context.Background(), cfg, table)

			Convey("Then the reason is window_closed", func() {
				So(err, ShouldBeNil)
				So(res.FinalWeek, ShouldEqual, 2)
				So(res.Reason, ShouldEqual, model.WindowClosed)
				So(res.States["EEEE"].Status, ShouldEqual, model.StatusEliminated)
				So(res.States["FFFF"].Status, ShouldEqual, model.StatusEliminated)
				So(res.States["AAAA"].Status, ShouldEqual, model.StatusActive)
			})
		})
	})
}

func TestReplayer_WholeFieldStruckOut(t *testing.T) {
	Convey("Given two finalists who tie at the bottom two weeks running", t, func() {
		cfg := model.SeasonConfig{
			Season: 2030, Pool: 200, FirstWeek: 1, LastWeek: 5,
			Roster: []string{"AAAA", "BBBB"},
		}
		rows := []model.WeekScore{
			{Week: 1, Team: "AAAA", Score: 88.5}, {Week: 1, Team: "BBBB", Score: 88.5},
			{Week: 2, Team: "AAAA", Score: 91.2}, {Week: 2, Team: "BBBB", Score: 91.2},
		}
		table, err := replay.NewScoreTable(rows)
		So(err, ShouldBeNil)

		Convey("When the season is replayed", func() {
			res, err := replay.New().Replay(context.Background(), cfg, table)

			Convey("Then the wiped field ends the season, not an error", func() {
				So(err, ShouldBeNil)
				So(res.FinalWeek, ShouldEqual, 2)
				So(res.Reason, ShouldEqual, model.FieldEliminated)
				So(res.Weeks, ShouldHaveLength, 2)
				So(res.Weeks[1].Eliminated, ShouldResemble, []string{"AAAA", "BBBB"})
				So(res.States["AAAA"].Status, ShouldEqual, model.StatusEliminated)
				So(res.States["BBBB"].Status, ShouldEqual, model.StatusEliminated)
				So(res.States["AAAA"].EliminationWeek, ShouldEqual, 2)
			})
		})

		Convey("When the replay is truncated before the wipe", func() {
			prefix, err := replay.New().ReplayThrough(context.Background(), cfg, table, 1)

			Convey("Then the season is still undecided at that point", func() {
				So(err, ShouldBeNil)
				So(prefix.Reason, ShouldBeEmpty)
				So(prefix.States["AAAA"].Status, ShouldEqual, model.StatusOnNotice)
				So(prefix.States["BBBB"].Status, ShouldEqual, model.StatusOnNotice)
			})
		})
	})
}

func TestReplayer_ReplayThrough(t *testing.T) {
	Convey("Given a decided season", t, func() {
		cfg, rows := fiveTeamSeason()
		table, err := replay.NewScoreTable(rows)
		So(err, ShouldBeNil)
		replayer := replay.New()

		full, err := replayer.Replay(context.Background(), cfg, table)
		So(err, ShouldBeNil)

		Convey("When replaying through each processed week", func() {
			Convey("Then every truncated replay matches the full replay's prefix", func() {
				for stopAt := cfg.FirstWeek; stopAt <= full.FinalWeek; stopAt++ {
					prefix, err := replayer.ReplayThrough(context.Background(), cfg, table, stopAt)
					So(err, ShouldBeNil)
					So(prefix.FinalWeek, ShouldEqual, stopAt)
					So(prefix.Weeks, ShouldHaveLength, stopAt)
					for i, wr := range prefix.Weeks {
						So(wr, ShouldResemble, full.Weeks[i])
					}
				}
			})
		})

		Convey("When stopping mid-season", func() {
			prefix, err := replayer.ReplayThrough(context.Background(), cfg, table, 2)

			Convey("Then the reason is empty because the season is undecided", func() {
				So(err, ShouldBeNil)
				So(prefix.Reason, ShouldBeEmpty)
				So(prefix.States["DDDD"].Status, ShouldEqual, model.StatusEliminated)
				So(prefix.States["EEEE"].Status, ShouldEqual, model.StatusOnNotice)
			})
		})

		Convey("When stopping past the decisive week", func() {
			prefix, err := replayer.ReplayThrough(context.Background(), cfg, table, 9)

			Convey("Then the replay still ends at the decisive week", func() {
				So(err, ShouldBeNil)
				So(prefix.FinalWeek, ShouldEqual, 6)
				So(prefix.Reason, ShouldEqual, model.LastTeamStanding)
			})
		})

		Convey("When the stop week precedes the window", func() {
			_, err := replayer.ReplayThrough(context.Background(), cfg, table, 0)

			Convey("Then it fails with ErrBadStopWeek", func() {
				So(err, ShouldWrap, replay.ErrBadStopWeek)
			})
		})
	})

	Convey("Given a score table missing a whole week", t, func() {
		cfg, rows := fiveTeamSeason()
		var holed []model.WeekScore
		for _, row := range rows {
			if row.Week != 3 {
				holed = append(holed, row)
			}
		}
		table, err := replay.NewScoreTable(holed)
		So(err, ShouldBeNil)

		Convey("When the season is replayed", func() {
			_, err := replay.New().Replay(context.Background(), cfg, table)

			Convey("Then the missing week is a hard error, never skipped", func() {
				So(err, ShouldWrap, strike.ErrMissingScore)
			})
		})
	})

	Convey("Given an invalid season config", t, func() {
		cfg := model.SeasonConfig{Season: 2032, Pool: 100, FirstWeek: 1, LastWeek: 5}

		Convey("When a replay is attempted", func() {
			_, err := replay.New().Replay(context.Background(), cfg, replay.ScoreTable{})

			Convey("Then validation fails before any week runs", func() {
				So(err, ShouldWrap, model.ErrEmptyRoster)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		cfg, rows := fiveTeamSeason()
		table, err := replay.NewScoreTable(rows)
		So(err, ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When the season is replayed", func() {
			_, err := replay.New().Replay(ctx, cfg, table)

			Convey("Then the context error surfaces", func() {
				So(err, ShouldWrap, context.Canceled)
			})
		})
	})
}

func TestReplayer_WithEngine(t *testing.T) {
	Convey("Given a replayer with a custom engine", t, func() {
		engine := strike.New(strike.WithTwoStrikeFloor(100))
		replayer := replay.New(replay.WithEngine(engine))
		cfg, rows := fiveTeamSeason()
		table, err := replay.NewScoreTable(rows)
		So(err, ShouldBeNil)

		Convey("When the season's first week is replayed", func() {
			prefix, err := replayer.ReplayThrough(context.Background(), cfg, table, 1)

			Convey("Then the custom rules apply", func() {
				So(err, ShouldBeNil)
				So(prefix.Weeks[0].Mode, ShouldEqual, model.OneStrike)
				So(prefix.Weeks[0].Struck, ShouldResemble, []string{"EEEE"})
			})
		})
	})
}
