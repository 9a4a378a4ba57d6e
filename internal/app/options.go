package service

import (
	"github.com/okian/nobeldash/internal/adapters/cache"
	"github.com/okian/nobeldash/internal/domain/normalize"
	"github.com/okian/nobeldash/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithDataPath sets the laureate CSV path.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithBoundariesPath sets the country boundary GeoJSON path.
func WithBoundariesPath(path string) Option {
	return func(s *Service) {
		s.boundariesPath = path
	}
}

// WithPairing selects how prize years are matched with categories.
func WithPairing(mode normalize.Mode) Option {
	return func(s *Service) {
		s.pairing = mode
	}
}

// WithCache sets the rendered-bytes cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithChartSize sets the gender chart size in pixels.
func WithChartSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.chartWidth = width
			s.chartHeight = height
		}
	}
}

// WithWatch enables reloading when the data file changes.
func WithWatch(enabled bool) Option {
	return func(s *Service) {
		s.watch = enabled
	}
}

// WithWarmers sets how many workers pre-render common artifacts into the
// cache after each load. Zero disables warming.
func WithWarmers(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.warmers = n
		}
	}
}
