package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/servify/servify-dashboard/cmd/servify/cli"
	"github.com/servify/servify-dashboard/internal/analytics"
	analyticsdb "github.com/servify/servify-dashboard/internal/analytics/db"
	analytichttp "github.com/servify/servify-dashboard/internal/analytics/http"
	"github.com/servify/servify-dashboard/internal/app"
	"github.com/servify/servify-dashboard/internal/auth"
	"github.com/servify/servify-dashboard/internal/observability"
	"github.com/servify/servify-dashboard/internal/platform/cache"
	"github.com/servify/servify-dashboard/internal/platform/db"
	"github.com/servify/servify-dashboard/internal/view"
)

const serviceName = "servify-dashboard"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 {
		os.Exit(runCommand(ctx, cfg, logger, os.Args[1:]))
	}
	if err := serve(ctx, stop, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	shutdownTracing := observability.SetupTracing(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.OTELEndpoint,
		Insecure:    cfg.OTELInsecure,
	}, logger)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown", slog.Any("error", err))
		}
	}()

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The cache is optional; queries go straight to postgres.
		logger.Warn("redis unavailable, analytics cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	metrics := observability.NewMetrics()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	gate := auth.NewGate(tokens, logger)
	authService := auth.NewService(auth.NewRepository(dbpool), tokens)
	authHandler := auth.NewHandler(logger, authService, gate).WithObserver(metrics)

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL, logger)
	if err := analyticsCache.RegisterMetrics(metrics.Registerer()); err != nil {
		logger.Warn("analytics cache metrics disabled", slog.Any("error", err))
	}
	analyticsService := analytics.NewService(analyticsdb.New(dbpool), analyticsCache)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		Gate:             gate,
		AuthHandler:      authHandler,
		AnalyticsHandler: analyticsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// runCommand dispatches maintenance subcommands such as `cache bump`.
func runCommand(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	if len(args) < 2 || args[0] != "cache" || args[1] != "bump" {
		_, _ = fmt.Fprintln(os.Stderr, "usage: servify [cache bump [--json]]")
		return 2
	}
	fs := flag.NewFlagSet("cache bump", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args[2:]); err != nil {
		return 2
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "cache bump: %v\n", err)
		return 1
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	cacheCLI, err := cli.NewCacheCLI(analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL, logger))
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return cacheCLI.BumpCommand(ctx, cli.CacheBumpOptions{JSONOutput: *jsonOutput})
}
