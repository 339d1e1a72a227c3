package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/okian/ringlens/internal/adapters/http/api"
	"github.com/okian/ringlens/internal/adapters/http/site"
	"github.com/okian/ringlens/internal/adapters/http/swagger"
	"github.com/okian/ringlens/internal/adapters/llm"
	"github.com/okian/ringlens/internal/adapters/repository"
	service "github.com/okian/ringlens/internal/app"
	"github.com/okian/ringlens/pkg/logger"
	"github.com/okian/ringlens/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 30 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func serveCmd(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and dashboard",
		Long: `Start the HTTP server.

Examples:
  ringlens serve
  ringlens serve --addr :8080
  RINGLENS_LLM_PROVIDER=anthropic ringlens serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				e.cfg.Addr = addr
			}
			return runServe(cmd.Context(), e)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides RINGLENS_ADDR)")
	return cmd
}

// newService builds the application service from configuration. A completer
// that cannot be built leaves the service running with model calls disabled.
func newService(ctx context.Context, e *env) *service.Service {
	completer, err := llm.New(e.cfg)
	if err != nil {
		e.log.Warn(ctx, "llm disabled", logger.String("provider", e.cfg.LLMProvider), logger.Error(err))
		completer = llm.Disabled{}
	}

	store := repository.NewMemoryStore(ctx,
		repository.WithMaxSessions(e.cfg.MaxSessions),
		repository.WithTTL(e.cfg.SessionTTL()),
	)

	return service.New(
		service.WithLogger(e.log),
		service.WithStore(store),
		service.WithCompleter(completer),
		service.WithParseConcurrency(e.cfg.ParseConcurrency),
		service.WithSummaryMaxTokens(e.cfg.SummaryMaxTokens),
		service.WithChatMaxTokens(e.cfg.ChatMaxTokens),
		service.WithTemperature(e.cfg.Temperature),
	)
}

// newHandler registers every route and wraps the mux in the middleware chain.
func newHandler(ctx context.Context, e *env, svc *service.Service) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc,
		api.WithLogger(e.log.Named("api")),
		api.WithMaxUploadBytes(e.cfg.MaxUploadBytes()),
	)
	apiServer.Register(ctx, mux)

	return middleware.RequestID(middleware.Recoverer(api.CORS(mux)))
}

func runServe(ctx context.Context, e *env) error {
	svc := newService(ctx, e)
	defer svc.Close()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              e.cfg.Addr,
		Handler:           newHandler(ctx, e, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info(ctx, "starting HTTP server",
			logger.String("addr", e.cfg.Addr),
			logger.String("llm_provider", e.cfg.LLMProvider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	e.log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	e.log.Info(ctx, "server stopped")
	return nil
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

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
