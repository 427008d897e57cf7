package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rffl/korm/internal/domain/model"
)

const pingTimeout = 5 * time.Second

// PostgresStore implements Store on a Postgres pool, persisting season
// inputs and replay results as jsonb keyed by season year. Replay outputs
// are pure functions of the inputs, so jsonb blobs are the whole schema;
// nothing ever needs a relational query across weeks.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn, verifies the connection, and creates
// the schema if missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.bootstrap(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) bootstrap(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS korm_seasons (
			season     integer PRIMARY KEY,
			config     jsonb NOT NULL,
			scores     jsonb NOT NULL,
			weeks      jsonb,
			outcome    jsonb,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveSeason upserts a season's inputs and clears any stale results.
func (s *PostgresStore) SaveSeason(ctx context.Context, cfg model.SeasonConfig, rows []model.WeekScore) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO korm_seasons (season, config, scores, weeks, outcome, updated_at)
		VALUES ($1, $2, $3, NULL, NULL, now())
		ON CONFLICT (season) DO UPDATE
		SET config = EXCLUDED.config, scores = EXCLUDED.scores,
		    weeks = NULL, outcome = NULL, updated_at = now()`,
		cfg.Season, cfgJSON, rowsJSON)
	if err != nil {
		return fmt.Errorf("save season %d: %w", cfg.Season, err)
	}
	return nil
}

// Season returns the stored inputs for a season.
func (s *PostgresStore) Season(ctx context.Context, season int) (model.SeasonConfig, []model.WeekScore, error) {
	var cfgJSON, rowsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT config, scores FROM korm_seasons WHERE season = $1`, season).
		Scan(&cfgJSON, &rowsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SeasonConfig{}, nil, fmt.Errorf("season %d: %w", season, ErrNotFound)
	}
	if err != nil {
		return model.SeasonConfig{}, nil, fmt.Errorf("load season %d: %w", season, err)
	}

	var cfg model.SeasonConfig
	if err := json.Unmarshal(cfgJSON, &cfg); err != nil {
		return model.SeasonConfig{}, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	var rows []model.WeekScore
	if err := json.Unmarshal(rowsJSON, &rows); err != nil {
		return model.SeasonConfig{}, nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	return cfg, rows, nil
}

// SaveResult records a decided season's week results and outcome.
func (s *PostgresStore) SaveResult(ctx context.Context, season int, weeks []model.WeekResult, outcome model.SeasonOutcome) error {
	weeksJSON, err := json.Marshal(weeks)
	if err != nil {
		return fmt.Errorf("marshal weeks: %w", err)
	}
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE korm_seasons
		SET weeks = $2, outcome = $3, updated_at = now()
		WHERE season = $1`,
		season, weeksJSON, outcomeJSON)
	if err != nil {
		return fmt.Errorf("save result %d: %w", season, err)
	}
	if tag.RowsAffected() == 0 {
		// Result without inputs: insert a bare row so reads still work.
		_, err = s.pool.Exec(ctx, `
			INSERT INTO korm_seasons (season, config, scores, weeks, outcome)
			VALUES ($1, '{}', '[]', $2, $3)`,
			season, weeksJSON, outcomeJSON)
		if err != nil {
			return fmt.Errorf("save result %d: %w", season, err)
		}
	}
	return nil
}

// Weeks returns the per-week results of a replayed season.
func (s *PostgresStore) Weeks(ctx context.Context, season int) ([]model.WeekResult, error) {
	var weeksJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT weeks FROM korm_seasons WHERE season = $1 AND weeks IS NOT NULL`, season).
		Scan(&weeksJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("season %d results: %w", season, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load weeks %d: %w", season, err)
	}
	var weeks []model.WeekResult
	if err := json.Unmarshal(weeksJSON, &weeks); err != nil {
		return nil, fmt.Errorf("unmarshal weeks: %w", err)
	}
	return weeks, nil
}

// Outcome returns the final placements of a replayed season.
func (s *PostgresStore) Outcome(ctx context.Context, season int) (model.SeasonOutcome, error) {
	var outcomeJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT outcome FROM korm_seasons WHERE season = $1 AND outcome IS NOT NULL`, season).
		Scan(&outcomeJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SeasonOutcome{}, fmt.Errorf("season %d outcome: %w", season, ErrNotFound)
	}
	if err != nil {
		return model.SeasonOutcome{}, fmt.Errorf("load outcome %d: %w", season, err)
	}
	var outcome model.SeasonOutcome
	if err := json.Unmarshal(outcomeJSON, &outcome); err != nil {
		return model.SeasonOutcome{}, fmt.Errorf("unmarshal outcome: %w", err)
	}
	return outcome, nil
}

// Seasons lists stored season years, ascending.
func (s *PostgresStore) Seasons(ctx context.Context) ([]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT season FROM korm_seasons ORDER BY season`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return years, nil
}

// Count returns the number of stored seasons, or 0 on query failure.
func (s *PostgresStore) Count(ctx context.Context) int {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM korm_seasons`).Scan(&n); err != nil {
		return 0
	}
	return n
}
