package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/rffl/korm/internal/app"
	"github.com/rffl/korm/internal/adapters/repository"
	"github.com/rffl/korm/internal/domain/model"
	"github.com/rffl/korm/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// decidedSeason is resolved in week 4 with AAAA the last team standing:
// CCCC is struck in weeks 1 and 2, BBBB in weeks 3 and 4.
func decidedSeason(year int) (model.SeasonConfig, []model.WeekScore) {
	cfg := model.SeasonConfig{
		Season: year, EntryFee: 100, Pool: 300, FirstWeek: 1, LastWeek: 5,
		Roster: []string{"AAAA", "BBBB", "CCCC"},
	}
	rows := []model.WeekScore{
		{Week: 1, Team: "AAAA", Score: 120}, {Week: 1, Team: "BBBB", Score: 110},
		{Week: 1, Team: "CCCC", Score: 90},
		{Week: 2, Team: "AAAA", Score: 118}, {Week: 2, Team: "BBBB", Score: 108},
		{Week: 2, Team: "CCCC", Score: 88},
		{Week: 3, Team: "AAAA", Score: 116}, {Week: 3, Team: "BBBB", Score: 96},
		{Week: 4, Team: "AAAA", Score: 114}, {Week: 4, Team: "BBBB", Score: 94},
	}
	return cfg, rows
}

func awaitOutcome(ctx context.Context, svc *service.Service, season int) (model.SeasonOutcome, error) {
	deadline := time.After(2 * time.Second)
	for {
		outcome, err := svc.Outcome(ctx, season)
		if err == nil {
			return outcome, nil
		}
		select {
		case <-deadline:
			return model.SeasonOutcome{}, err
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is created without starting", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(64),
			service.WithDedupeSize(128),
			service.WithStore(repository.NewMemoryStore()),
			service.WithLogger(logger.Get()),
		)

		Convey("Then the options are reflected in stats", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 64)
			So(stats["dedupeSize"], ShouldEqual, 128)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		ctx := context.Background()

		Convey("When it is started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then it reports running", func() {
				So(svc.GetStats()["started"], ShouldBeTrue)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping twice does not panic", func() {
				svc.Stop()
				So(svc.Stop, ShouldNotPanic)
			})
		})
	})
}

func TestService_SubmitSeason(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a valid season is submitted", func() {
			cfg, rows := decidedSeason(2030)
			accepted, duplicate, err := svc.SubmitSeason(ctx, cfg, rows)

			Convey("Then it is accepted", func() {
				So(err, ShouldBeNil)
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeFalse)
			})

			Convey("Then the replay completes asynchronously", func() {
				outcome, err := awaitOutcome(ctx, svc, 2030)
				So(err, ShouldBeNil)
				So(outcome.Champion, ShouldEqual, "AAAA")
				So(outcome.Reason, ShouldEqual, model.LastTeamStanding)
				So(outcome.FinalWeek, ShouldEqual, 4)
				So(outcome.Placements[0].Prize.IntPart(), ShouldEqual, 200)
			})

			Convey("Then per-week results become available", func() {
				_, err := awaitOutcome(ctx, svc, 2030)
				So(err, ShouldBeNil)
				weeks, err := svc.WeekResults(ctx, 2030)
				So(err, ShouldBeNil)
				So(weeks, ShouldHaveLength, 4)
				So(weeks[0].Struck, ShouldResemble, []string{"CCCC"})
			})

			Convey("And resubmitting the same season reports a duplicate", func() {
				accepted2, duplicate2, err := svc.SubmitSeason(ctx, cfg, rows)
				So(err, ShouldBeNil)
				So(accepted2, ShouldBeFalse)
				So(duplicate2, ShouldBeTrue)
			})
		})

		Convey("When an invalid season config is submitted", func() {
			cfg, rows := decidedSeason(2031)
			cfg.Roster = nil
			_, _, err := svc.SubmitSeason(ctx, cfg, rows)

			Convey("Then validation fails synchronously", func() {
				So(err, ShouldWrap, model.ErrEmptyRoster)
			})
		})

		Convey("When the rows carry a duplicate score", func() {
			cfg, rows := decidedSeason(2032)
			rows = append(rows, rows[0])
			_, _, err := svc.SubmitSeason(ctx, cfg, rows)

			Convey("Then the submission is rejected up front", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the seasons are listed", func() {
			cfg, rows := decidedSeason(2033)
			_, _, err := svc.SubmitSeason(ctx, cfg, rows)
			So(err, ShouldBeNil)

			years, err := svc.Seasons(ctx)

			Convey("Then the submitted season appears", func() {
				So(err, ShouldBeNil)
				So(years, ShouldContain, 2033)
			})
		})
	})
}

func TestService_Standings(t *testing.T) {
	Convey("Given a service holding a replayed season", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		cfg, rows := decidedSeason(2030)
		accepted, _, err := svc.SubmitSeason(ctx, cfg, rows)
		So(err, ShouldBeNil)
		So(accepted, ShouldBeTrue)
		_, err = awaitOutcome(ctx, svc, 2030)
		So(err, ShouldBeNil)

		Convey("When standings are reconstructed mid-season", func() {
			standings, err := svc.Standings(ctx, 2030, 2)

			Convey("Then they reflect exactly the first two weeks", func() {
				So(err, ShouldBeNil)
				So(standings.Season, ShouldEqual, 2030)
				So(standings.Week, ShouldEqual, 2)
				So(standings.Reason, ShouldBeEmpty)
				So(standings.Teams, ShouldHaveLength, 3)
				So(standings.Teams[0].Team, ShouldEqual, "AAAA")
				So(standings.Teams[0].Status, ShouldEqual, model.StatusActive)
			})
		})

		Convey("When standings are requested at the decisive week", func() {
			standings, err := svc.Standings(ctx, 2030, 4)

			Convey("Then the terminus is reported", func() {
				So(err, ShouldBeNil)
				So(standings.Reason, ShouldEqual, model.LastTeamStanding)
			})
		})

		Convey("When standings are requested for an unknown season", func() {
			_, err := svc.Standings(ctx, 1999, 2)

			Convey("Then the store's not-found error surfaces", func() {
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})
	})
}
