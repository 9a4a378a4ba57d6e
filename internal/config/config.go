// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - Validation errors wrap ErrInvalidConfig so callers can errors.Is them.
package config

// Pairing modes accepted by the normalizer.
const (
	PairingPaired = "paired"
	PairingCross  = "cross"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoder: json or console.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath is the laureate CSV file.
	DataPath string `koanf:"data_path"`

	// BoundariesPath is an optional GeoJSON FeatureCollection of country polygons.
	BoundariesPath string `koanf:"boundaries_path"`

	// Pairing selects how multi-prize years and categories are matched: paired or cross.
	Pairing string `koanf:"pairing"`

	// WatchData reloads the dataset when DataPath changes on disk.
	WatchData bool `koanf:"watch_data"`

	// CacheBackend selects where rendered charts and exports are cached.
	CacheBackend string `koanf:"cache_backend"`

	// CacheTTLSeconds bounds the lifetime of cached renders.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// WarmWorkers pre-render common artifacts into the cache after each load.
	// Zero disables warming; it is also off when CacheBackend is none.
	WarmWorkers int `koanf:"warm_workers"`

	// Redis connection, used when CacheBackend is redis.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// ChartWidthPx and ChartHeightPx size the gender chart PNG.
	ChartWidthPx  int `koanf:"chart_width_px"`
	ChartHeightPx int `koanf:"chart_height_px"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "json",
		Addr:            ":9080",
		DataPath:        "nobel_laureates_clean.csv",
		BoundariesPath:  "",
		Pairing:         PairingPaired,
		WatchData:       false,
		CacheBackend:    CacheMemory,
		CacheTTLSeconds: 900,
		WarmWorkers:     2,
		RedisAddr:       "localhost:6379",
		RedisDB:         0,
		ChartWidthPx:    1200,
		ChartHeightPx:   600,
	}
}
