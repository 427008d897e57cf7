// Package queue defines the contract for handing season replay jobs to the
// worker pool. The implementation is an in-memory bounded queue; a season
// replay is a one-shot computation, so nothing needs to survive a restart.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rffl/korm/internal/domain/model"
	"github.com/rffl/korm/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// ReplayJob carries one submitted season through the pipeline.
type ReplayJob struct {
	// JobID is a uuid assigned at submission, used for log correlation.
	JobID       string
	Config      model.SeasonConfig
	Rows        []model.WeekScore
	SubmittedAt time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, job ReplayJob) bool

	// Dequeue returns a channel delivering jobs as they become available.
	// The channel closes when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan ReplayJob

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops the queue; no further enqueues succeed.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan ReplayJob
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan ReplayJob, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a job to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, job ReplayJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}

	select {
	case q.jobs <- job:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel delivering jobs until the queue closes.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan ReplayJob {
	out := make(chan ReplayJob)
	go func() {
		defer close(out)
		for job := range q.jobs {
			select {
			case out <- job:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.jobs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.jobs)
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
