package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rffl/korm/internal/simseason"
	"github.com/rffl/korm/pkg/logger"
)

// Default configuration constants.
const (
	defaultSeason     = 2030
	defaultTeams      = 12
	defaultFirstWeek  = 1
	defaultLastWeek   = 14
	defaultEntryFee   = 100
	defaultTimeout    = 30 * time.Second
	defaultPollEvery  = 250 * time.Millisecond
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9090", "Base URL of the service")
		season    = flag.Int("season", defaultSeason, "Season year to submit")
		teams     = flag.Int("teams", defaultTeams, "Number of teams in the roster")
		firstWeek = flag.Int("first-week", defaultFirstWeek, "First week of the window")
		lastWeek  = flag.Int("last-week", defaultLastWeek, "Last week of the window")
		entryFee  = flag.Int("fee", defaultEntryFee, "Entry fee per team")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed for score generation")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &simseason.Config{
		BaseURL:   *baseURL,
		Season:    *season,
		Teams:     *teams,
		FirstWeek: *firstWeek,
		LastWeek:  *lastWeek,
		EntryFee:  *entryFee,
		Seed:      *seed,
		Timeout:   *timeout,
		PollEvery: defaultPollEvery,
		Verbose:   *verbose,
	}

	if _, err := simseason.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
