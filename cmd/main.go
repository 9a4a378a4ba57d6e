package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/okian/nobeldash/internal/adapters/cache"
	app "github.com/okian/nobeldash/internal/app"
	"github.com/okian/nobeldash/internal/config"
	"github.com/okian/nobeldash/internal/domain/normalize"
	"github.com/okian/nobeldash/pkg/logger"
)

// rootFlags override the loaded configuration when set.
type rootFlags struct {
	configPath string
	dataPath   string
	boundaries string
	pairing    string
	logLevel   string
}

func main() {
	// Default Go collectors are replaced by the custom system metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "nobeldash",
		Short: "Interactive dashboard over the Nobel laureate dataset",
		Long: `nobeldash loads a CSV of Nobel laureates and serves four views:
a world map of prizes per country, laureates by year, awards by category
and laureates by gender.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	pf.StringVar(&flags.dataPath, "data", "", "laureate CSV file")
	pf.StringVar(&flags.boundaries, "boundaries", "", "GeoJSON country boundaries")
	pf.StringVar(&flags.pairing, "pairing", "", "year/category pairing: paired or cross")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newServeCmd(flags), newRenderCmd(flags))
	return root
}

// loadConfig layers the command-line flags over config.Load.
func loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	if flags.dataPath != "" {
		cfg.DataPath = flags.dataPath
	}
	if flags.boundaries != "" {
		cfg.BoundariesPath = flags.boundaries
	}
	if flags.pairing != "" {
		cfg.Pairing = flags.pairing
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogging configures the global logger from cfg.
func initLogging(ctx context.Context, cfg *config.Config) (logger.Logger, error) {
	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()

	// Fall back to info on invalid input.
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return log, nil
}

// newCache builds the render cache selected by cfg.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return cache.NewMemory(cache.WithTTL(ttl)), nil
	case config.CacheRedis:
		r, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, ttl)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return cache.Nop{}, nil
	}
}

// newService creates the dashboard service with configuration options.
func newService(cfg *config.Config, log logger.Logger, c cache.Cache, watch bool) (*app.Service, error) {
	mode, err := normalize.ParseMode(cfg.Pairing)
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(log),
		app.WithDataPath(cfg.DataPath),
		app.WithBoundariesPath(cfg.BoundariesPath),
		app.WithPairing(mode),
		app.WithCache(c),
		app.WithChartSize(cfg.ChartWidthPx, cfg.ChartHeightPx),
		app.WithWatch(watch),
		app.WithWarmers(cfg.WarmWorkers),
	), nil
}
