package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wrpfuk/records/internal/adapters/http/api"
	"github.com/wrpfuk/records/internal/adapters/http/site"
	"github.com/wrpfuk/records/internal/adapters/http/swagger"
	app "github.com/wrpfuk/records/internal/app"
	"github.com/wrpfuk/records/internal/config"
	"github.com/wrpfuk/records/pkg/logger"
	"github.com/wrpfuk/records/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// The service exposes its own registry; drop the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat, Level: cfg.LogLevel}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	metrics.Configure(metricsOptions(cfg)...)

	svc := newService(cfg, logger.Get())
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// metricsOptions maps the metrics_* settings onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return metrics.Settings{
		Enabled:   cfg.MetricsEnabled,
		Namespace: cfg.MetricsNamespace,
		Subsystem: cfg.MetricsSubsystem,
		Prefix:    cfg.MetricsPrefix,
		Buckets:   cfg.MetricsBuckets,
		Labels:    cfg.MetricsLabels,
		Refresh:   time.Duration(cfg.MetricsRefreshSec) * time.Second,
	}.Options()
}

// newService builds the records service from configuration.
func newService(cfg *config.Config, l logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(l),
		app.WithDatasetPath(cfg.DatasetPath),
		app.WithReloadInterval(time.Duration(cfg.ReloadIntervalSec)*time.Second),
		app.WithMaxSessions(cfg.MaxSessions),
		app.WithMaxExportRows(cfg.MaxExportRows),
	)
}

// newMux registers the API, the docs and the landing page.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}
