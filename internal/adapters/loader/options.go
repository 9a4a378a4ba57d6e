package loader

import "github.com/okian/nobeldash/pkg/logger"

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithBoundaries sets the country boundary GeoJSON path. Empty disables it.
func WithBoundaries(path string) Option {
	return func(l *Loader) {
		l.boundariesPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}
