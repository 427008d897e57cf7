package strike

import "errors"

// Sentinel kinds for engine errors. Input mismatches are data problems the
// caller must fix; ErrInvariant marks an engine bug and aborts the replay.
var (
	ErrMissingScore    = errors.New("missing score for alive team")
	ErrUnexpectedScore = errors.New("score present for non-alive team")
	ErrInvariant       = errors.New("strike invariant violated")
)
