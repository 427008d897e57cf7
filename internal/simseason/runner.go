package simseason

import (
	"context"
	"fmt"
	"time"

	"github.com/rffl/korm/internal/domain/payout"
	"github.com/rffl/korm/internal/domain/replay"
	"github.com/rffl/korm/pkg/logger"
)

// Run generates a season, submits it, waits for the service's replay, and
// cross-checks the reported outcome and standings against a local replay of
// the identical inputs.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("simseason")
	stats := &Stats{StartTime: time.Now()}

	season, rows, err := generateSeason(ctx, cfg)
	if err != nil {
		return nil, err
	}
	stats.TeamsGenerated = len(season.Roster)

	// Local reference replay.
	table, err := replay.NewScoreTable(rows)
	if err != nil {
		return nil, err
	}
	local, err := replay.New().Replay(ctx, season, table)
	if err != nil {
		return nil, fmt.Errorf("local replay: %w", err)
	}
	want, err := payout.Finalize(local.States, season, local.FinalWeek, local.Reason)
	if err != nil {
		return nil, fmt.Errorf("local finalize: %w", err)
	}
	stats.WeeksGenerated = len(local.Weeks)

	client := newHTTPClient(cfg.Timeout)

	ack, err := submitSeason(ctx, client, cfg.BaseURL, season, rows)
	if err != nil {
		return nil, err
	}
	if ack.Duplicate {
		return nil, fmt.Errorf("season %d already submitted; pick another year or restart the service", season.Season)
	}
	log.Info(ctx, "season submitted", logger.Int("season", season.Season))

	got, err := fetchOutcome(ctx, client, cfg.BaseURL, season.Season, cfg.PollEvery)
	if err != nil {
		return nil, err
	}
	stats.WeeksReplayed = got.FinalWeek - season.FirstWeek + 1
	stats.Champion = got.Champion
	stats.Reason = string(got.Reason)

	// The service's replay must agree with the local one exactly.
	if got.Champion != want.Champion {
		return nil, fmt.Errorf("champion mismatch: service %q, local %q", got.Champion, want.Champion)
	}
	if got.Reason != want.Reason || got.FinalWeek != want.FinalWeek {
		return nil, fmt.Errorf("terminus mismatch: service (%s, week %d), local (%s, week %d)",
			got.Reason, got.FinalWeek, want.Reason, want.FinalWeek)
	}
	for i, p := range want.Placements {
		g := got.Placements[i]
		if g.Team != p.Team || g.Strikes != p.Strikes || !g.Prize.Equal(p.Prize) {
			return nil, fmt.Errorf("placement %d mismatch: service %s/%d/%s, local %s/%d/%s",
				i+1, g.Team, g.Strikes, g.Prize, p.Team, p.Strikes, p.Prize)
		}
	}

	// Prefix consistency: standings as of every processed week must match a
	// truncated local replay of the same prefix.
	for week := season.FirstWeek; week <= local.FinalWeek; week++ {
		standings, err := fetchStandings(ctx, client, cfg.BaseURL, season.Season, week)
		if err != nil {
			return nil, err
		}
		prefix, err := replay.New().ReplayThrough(ctx, season, table, week)
		if err != nil {
			return nil, fmt.Errorf("local truncated replay: %w", err)
		}
		ranked := payout.Rank(prefix.States)
		if len(standings.Teams) != len(ranked) {
			return nil, fmt.Errorf("week %d standings: %d teams, want %d", week, len(standings.Teams), len(ranked))
		}
		for i, st := range ranked {
			gotTeam := standings.Teams[i]
			if gotTeam.Team != st.Team || gotTeam.Status != st.Status || len(gotTeam.StrikeWeeks) != st.Strikes() {
				return nil, fmt.Errorf("week %d standings row %d mismatch: service %s/%s, local %s/%s",
					week, i+1, gotTeam.Team, gotTeam.Status, st.Team, st.Status)
			}
		}
		stats.StandingsChecks++
		if cfg.Verbose {
			log.Info(ctx, "standings verified", logger.Int("week", week))
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "simulation passed",
		logger.Int("season", season.Season),
		logger.String("champion", stats.Champion),
		logger.String("reason", stats.Reason),
		logger.Int("weeks", stats.WeeksReplayed),
		logger.Int("standingsChecks", stats.StandingsChecks),
	)
	return stats, nil
}
