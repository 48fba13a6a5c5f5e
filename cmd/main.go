package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/courtstats/internal/adapters/http/api"
	"github.com/okian/courtstats/internal/adapters/http/site"
	"github.com/okian/courtstats/internal/adapters/http/swagger"
	app "github.com/okian/courtstats/internal/app"
	"github.com/okian/courtstats/internal/config"
	"github.com/okian/courtstats/pkg/logger"
	"github.com/okian/courtstats/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	configureLogger(ctx, cfg)
	loggerInstance := logger.Get()

	svc := newService(cfg, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// configureLogger applies the configured format and level, falling back to
// the defaults on invalid input.
func configureLogger(ctx context.Context, cfg *config.Config) {
	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		logger.Get().Warn(ctx, "invalid log_format; falling back to text", logger.String("logFormat", cfg.LogFormat), logger.Error(err))
		_ = logger.SetFormat("text")
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("logLevel", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, l logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(l),
		app.WithStorage(cfg.StorageDriver, cfg.DatabaseDSN),
		app.WithDataDir(cfg.DataDir, cfg.LoadOnStart),
		app.WithRankCacheTTL(cfg.RankCacheTTL()),
		app.WithRankBatchSize(cfg.RankBatchSize),
	)
}

// newHandler builds the HTTP routes served by the binary.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()

	// Landing page at exactly /
	site.Register(ctx, mux)

	// API reference under /api-docs
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, cfg.MaxPlayersLimit)
	apiServer.Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
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

// startServiceMetricsUpdater periodically refreshes the store size gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
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
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics copies store counts from the service stats into gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	for _, kind := range []string{"teams", "games", "players", "events"} {
		if n, ok := stats[kind].(int64); ok {
			metrics.UpdateStoreRecords(kind, n)
		}
	}
}
