package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rffl/korm/internal/domain/model"
)

// seasonRecord bundles everything stored for one season. weeks and outcome
// stay nil until the replay worker saves a result.
type seasonRecord struct {
	cfg     model.SeasonConfig
	rows    []model.WeekScore
	weeks   []model.WeekResult
	outcome *model.SeasonOutcome
}

// MemoryStore implements Store with mutex-guarded maps. The default backend:
// a handful of seasons per league makes contention a non-issue.
type MemoryStore struct {
	mu      sync.RWMutex
	seasons map[int]*seasonRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seasons: make(map[int]*seasonRecord)}
}

// SaveSeason records a submitted season's inputs, replacing any prior copy.
func (s *MemoryStore) SaveSeason(_ context.Context, cfg model.SeasonConfig, rows []model.WeekScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seasons[cfg.Season] = &seasonRecord{
		cfg:  cfg,
		rows: append([]model.WeekScore(nil), rows...),
	}
	return nil
}

// Season returns the stored inputs for a season.
func (s *MemoryStore) Season(_ context.Context, season int) (model.SeasonConfig, []model.WeekScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.seasons[season]
	if !ok {
		return model.SeasonConfig{}, nil, fmt.Errorf("season %d: %w", season, ErrNotFound)
	}
	return rec.cfg, append([]model.WeekScore(nil), rec.rows...), nil
}

// SaveResult records a decided season's week results and outcome.
func (s *MemoryStore) SaveResult(_ context.Context, season int, weeks []model.WeekResult, outcome model.SeasonOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.seasons[season]
	if !ok {
		rec = &seasonRecord{cfg: model.SeasonConfig{Season: season}}
		s.seasons[season] = rec
	}
	rec.weeks = append([]model.WeekResult(nil), weeks...)
	out := outcome
	rec.outcome = &out
	return nil
}

// Weeks returns the per-week results of a replayed season.
func (s *MemoryStore) Weeks(_ context.Context, season int) ([]model.WeekResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.seasons[season]
	if !ok || rec.weeks == nil {
		return nil, fmt.Errorf("season %d results: %w", season, ErrNotFound)
	}
	return append([]model.WeekResult(nil), rec.weeks...), nil
}

// Outcome returns the final placements of a replayed season.
func (s *MemoryStore) Outcome(_ context.Context, season int) (model.SeasonOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.seasons[season]
	if !ok || rec.outcome == nil {
		return model.SeasonOutcome{}, fmt.Errorf("season %d outcome: %w", season, ErrNotFound)
	}
	return *rec.outcome, nil
}

// Seasons lists stored season years, ascending.
func (s *MemoryStore) Seasons(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	years := make([]int, 0, len(s.seasons))
	for year := range s.seasons {
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

// Count returns the number of stored seasons.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seasons)
}
