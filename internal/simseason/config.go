// Package simseason generates synthetic KORM seasons, submits them to a
// running service, and verifies the replayed results against a local
// replay of the same inputs.
package simseason

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Season    int           // Season year to submit
	Teams     int           // Number of teams in the roster
	FirstWeek int           // First week of the KORM window
	LastWeek  int           // Last week of the KORM window
	EntryFee  int           // Entry fee per team
	Seed      int64         // Random seed for score generation
	Timeout   time.Duration // HTTP request timeout
	PollEvery time.Duration // Outcome poll interval
	Verbose   bool          // Enable verbose logging
}

// Stats holds simulation statistics.
type Stats struct {
	TeamsGenerated  int
	WeeksGenerated  int
	WeeksReplayed   int
	StandingsChecks int
	StartTime       time.Time
	Duration        time.Duration
	Champion        string
	Reason          string
}
