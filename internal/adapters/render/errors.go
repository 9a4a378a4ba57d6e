package render

import "errors"

// Sentinel kinds for render errors.
var (
	ErrNoBoundaries = errors.New("no boundary data loaded")
	ErrEmptyChart   = errors.New("nothing to chart")
	ErrFormat       = errors.New("unsupported output format")
	ErrChartSpan    = errors.New("year span too wide to chart")
)
