package loader

import "errors"

// Sentinel kinds for load errors.
var (
	ErrOpen          = errors.New("cannot open input")
	ErrMissingColumn = errors.New("missing required column")
	ErrMalformed     = errors.New("malformed input")
)
