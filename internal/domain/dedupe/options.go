// Package dedupe tracks already-submitted replay keys.
package dedupe

// defaultMaxSize bounds the seen set; a few seasons per year means even the
// default is generous.
const defaultMaxSize = 10_000

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets how many keys to keep before evicting the oldest.
// maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
