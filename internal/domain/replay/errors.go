package replay

import "errors"

// Sentinel kinds for replay errors.
var (
	ErrDuplicateScore = errors.New("duplicate score row for team-week")
	ErrBadStopWeek    = errors.New("stop week outside season window")
)
