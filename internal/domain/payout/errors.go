package payout

import "errors"

// ErrNotDecided is returned when Finalize is asked to rank a season that has
// not reached a genuine terminus.
var ErrNotDecided = errors.New("season not decided")
