// Package dedupe tracks already-submitted replay keys so a season is only
// queued once per submission key.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen submission keys to keep replays at-most-once.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it if
	// not. Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so the submission can be retried. Used when a
	// recorded submission failed to enqueue (backpressure).
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus an insertion-order
// queue for bounded eviction. maxSize <= 0 disables eviction entirely.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, oldest first; unused when unbounded
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		d.order = append(d.order, key)
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; !ok {
		return
	}
	delete(d.seen, key)
	d.size.Add(-1)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// evictOldest drops the oldest recorded key. Must hold d.mu.
func (d *inMemoryDeduper) evictOldest() {
	for len(d.order) > 0 {
		oldest := d.order[0]
		d.order = d.order[1:]
		if _, ok := d.seen[oldest]; ok {
			delete(d.seen, oldest)
			d.size.Add(-1)
			return
		}
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
