package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	// ErrStale marks a job whose snapshot is no longer current.
	ErrStale = errors.New("warm-up job is stale")

	// ErrPanic marks a job whose renderer panicked.
	ErrPanic = errors.New("warm-up job panicked")
)
