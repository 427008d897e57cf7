// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/rffl/korm/internal/adapters/mq/queue"
	workerpool "github.com/rffl/korm/internal/adapters/mq/worker"
	"github.com/rffl/korm/internal/adapters/repository"
	"github.com/rffl/korm/internal/domain/dedupe"
	"github.com/rffl/korm/internal/domain/model"
	"github.com/rffl/korm/internal/domain/payout"
	"github.com/rffl/korm/internal/domain/replay"
	"github.com/rffl/korm/pkg/logger"
	"github.com/rffl/korm/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount = 4
	defaultQueueSize   = 1024
	defaultDedupeSize  = 10_000
)

// Service implements the API dependencies for the KORM replay system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	deduper  dedupe.Deduper
	jobs     *jobqueue.InMemoryQueue
	replayer *replay.Replayer
	pool     *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of replay workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the replay job queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission-idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore injects a results store; defaults to the in-memory backend.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting replay service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobs = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
	)
	s.replayer = replay.New()

	s.pool = workerpool.NewPool(s.workerCount, s.jobs, s.replayer, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "replay service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping replay service...")

	if s.jobs != nil {
		_ = s.jobs.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "replay service stopped")
}

// SubmitSeason validates a season submission and queues it for replay.
// Returns duplicate=true when the season was already submitted; accepted
// is false on queue backpressure, and the submission may be retried.
func (s *Service) SubmitSeason(ctx context.Context, cfg model.SeasonConfig, rows []model.WeekScore) (accepted, duplicate bool, err error) {
	if err := cfg.Validate(); err != nil {
		return false, false, err
	}
	// Surface malformed score rows at submission time rather than as an
	// async replay failure.
	if _, err := replay.NewScoreTable(rows); err != nil {
		return false, false, err
	}

	key := "season-" + strconv.Itoa(cfg.Season)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordSeasonDuplicate()
		return false, true, nil
	}

	if err := s.store.SaveSeason(ctx, cfg, rows); err != nil {
		s.deduper.Unrecord(ctx, key)
		return false, false, fmt.Errorf("save season %d: %w", cfg.Season, err)
	}

	job := jobqueue.ReplayJob{
		JobID:       uuid.New().String(),
		Config:      cfg,
		Rows:        rows,
		SubmittedAt: time.Now(),
	}
	if !s.jobs.Enqueue(ctx, job) {
		// Roll back the seen mark so the caller can retry.
		s.deduper.Unrecord(ctx, key)
		return false, false, nil
	}

	metrics.RecordSeasonAccepted()
	metrics.UpdateSeasonsStored(s.store.Count(ctx))
	s.logger.Debug(ctx, "season queued for replay",
		logger.String("jobID", job.JobID),
		logger.Int("season", cfg.Season),
		logger.Int("teams", len(cfg.Roster)),
	)
	return true, false, nil
}

// Standings reconstructs a season's standings as of the given week by
// truncated replay of the stored inputs. The result is identical to the
// matching prefix of the full replay.
func (s *Service) Standings(ctx context.Context, season, week int) (model.Standings, error) {
	cfg, rows, err := s.store.Season(ctx, season)
	if err != nil {
		return model.Standings{}, err
	}
	table, err := replay.NewScoreTable(rows)
	if err != nil {
		return model.Standings{}, err
	}
	res, err := s.replayer.ReplayThrough(ctx, cfg, table, week)
	if err != nil {
		return model.Standings{}, err
	}

	ranked := payout.Rank(res.States)
	teams := make([]model.TeamState, len(ranked))
	for i, st := range ranked {
		teams[i] = *st.Clone()
	}
	return model.Standings{
		Season: season,
		Week:   res.FinalWeek,
		Reason: res.Reason,
		Teams:  teams,
	}, nil
}

// WeekResults returns the stored per-week results of a replayed season.
func (s *Service) WeekResults(ctx context.Context, season int) ([]model.WeekResult, error) {
	return s.store.Weeks(ctx, season)
}

// Outcome returns the stored final placements of a replayed season.
func (s *Service) Outcome(ctx context.Context, season int) (model.SeasonOutcome, error) {
	return s.store.Outcome(ctx, season)
}

// Seasons lists the season years known to the store.
func (s *Service) Seasons(ctx context.Context) ([]int, error) {
	return s.store.Seasons(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		queueLen := s.jobs.Len(ctx)
		stored := s.store.Count(ctx)
		stats["queueLength"] = queueLen
		stats["seasonsStored"] = stored

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateSeasonsStored(stored)
	}
	return stats
}
