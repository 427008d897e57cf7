// Package worker runs season replays pulled off the job queue. Seasons are
// independent computations, so the pool runs one season per worker with no
// shared mutable state; weeks inside a season stay strictly sequential
// inside the replayer.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rffl/korm/internal/adapters/mq/queue"
	"github.com/rffl/korm/internal/domain/model"
	"github.com/rffl/korm/internal/domain/payout"
	"github.com/rffl/korm/internal/domain/replay"
	"github.com/rffl/korm/pkg/logger"
	"github.com/rffl/korm/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Replayer runs one season from config and score table to its end state.
type Replayer interface {
	Replay(ctx context.Context, cfg model.SeasonConfig, table replay.ScoreTable) (*replay.Result, error)
}

// Sink persists a decided season's week results and outcome.
type Sink interface {
	SaveResult(ctx context.Context, season int, weeks []model.WeekResult, outcome model.SeasonOutcome) error
}

// JobSource defines how workers receive replay jobs.
type JobSource interface {
	Dequeue(ctx context.Context) <-chan queue.ReplayJob
}

// Worker consumes jobs until its source closes or it is shut down.
type Worker struct {
	source   JobSource
	replayer Replayer
	sink     Sink
	name     string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(source JobSource, replayer Replayer, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		replayer: replayer,
		sink:     sink,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the source closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				metrics.RecordReplayFailed()
				w.logger.Error(ctx, "replay failed",
					logger.String("jobID", job.JobID),
					logger.Int("season", job.Config.Season),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight job to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob replays one season end to end and persists the result. No
// retries: the computation is pure, so a failure means bad input or a bug,
// and rerunning it would fail the same way.
func (w *Worker) processJob(ctx context.Context, job queue.ReplayJob) error {
	start := time.Now()

	table, err := replay.NewScoreTable(job.Rows)
	if err != nil {
		return fmt.Errorf("job %s: %w", job.JobID, err)
	}

	res, err := w.replayer.Replay(ctx, job.Config, table)
	if err != nil {
		return fmt.Errorf("job %s: %w", job.JobID, err)
	}

	outcome, err := payout.Finalize(res.States, job.Config, res.FinalWeek, res.Reason)
	if err != nil {
		return fmt.Errorf("job %s: %w", job.JobID, err)
	}

	if err := w.sink.SaveResult(ctx, job.Config.Season, res.Weeks, outcome); err != nil {
		return fmt.Errorf("job %s: save result: %w", job.JobID, err)
	}

	strikes, eliminations := 0, 0
	for _, wr := range res.Weeks {
		strikes += len(wr.Struck)
		eliminations += len(wr.Eliminated)
	}
	metrics.RecordReplayCompleted(string(res.Reason))
	metrics.RecordReplayDuration(float64(time.Since(start).Milliseconds()))
	metrics.RecordWeeksProcessed(len(res.Weeks))
	metrics.RecordStrikesIssued(strikes)
	metrics.RecordEliminations(eliminations)

	w.logger.Info(ctx, "season replayed",
		logger.String("jobID", job.JobID),
		logger.Int("season", job.Config.Season),
		logger.Int("finalWeek", res.FinalWeek),
		logger.String("reason", string(res.Reason)),
		logger.String("champion", outcome.Champion),
	)
	return nil
}

// Pool manages a fixed set of replay workers.
type Pool struct {
	workers []*Worker
	source  JobSource

	logger logger.Logger
}

// NewPool creates a pool of workerCount replay workers.
func NewPool(workerCount int, source JobSource, replayer Replayer, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		source:  source,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(source, replayer, sink,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.stopOnce.Do(func() { close(w.shutdown) })
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the source and drains the pool with a timeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing job queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
