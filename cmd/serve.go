package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/nobeldash/internal/adapters/http/api"
	"github.com/okian/nobeldash/internal/adapters/http/site"
	"github.com/okian/nobeldash/internal/adapters/http/swagger"
	app "github.com/okian/nobeldash/internal/app"
	"github.com/okian/nobeldash/pkg/logger"
	"github.com/okian/nobeldash/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

type serveFlags struct {
	addr  string
	watch bool
}

func newServeCmd(root *rootFlags) *cobra.Command {
	sf := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and its JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root, withServeFlags(cmd, sf))
		},
	}
	cmd.Flags().StringVar(&sf.addr, "addr", "", "listen address, e.g. :9080")
	cmd.Flags().BoolVar(&sf.watch, "watch", false, "reload when the data file changes")
	return cmd
}

// withServeFlags returns the overrides for flags the user actually set.
func withServeFlags(cmd *cobra.Command, sf *serveFlags) func(addr *string, watch *bool) {
	return func(addr *string, watch *bool) {
		if cmd.Flags().Changed("addr") {
			*addr = sf.addr
		}
		if cmd.Flags().Changed("watch") {
			*watch = sf.watch
		}
	}
}

func runServe(ctx context.Context, flags *rootFlags, overrides ...func(addr *string, watch *bool)) error {
	// Load configuration (defaults -> optional file -> env -> flags)
	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	for _, o := range overrides {
		o(&cfg.Addr, &cfg.WatchData)
	}

	log, err := initLogging(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := newCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	svc, err := newService(cfg, log, c, cfg.WatchData)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newHandler mounts the docs, the API and the dashboard page on one router.
func newHandler(ctx context.Context, svc *app.Service, log logger.Logger) http.Handler {
	r := api.NewRouter(log.Named("http"))
	swagger.Register(ctx, r)
	api.NewServer(svc, svc, log.Named("api")).Register(ctx, r)
	site.Register(ctx, r)
	return r
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average pause across all collections.
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
