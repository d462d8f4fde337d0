package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadtracker/internal/api"
	"leadtracker/internal/config"
	"leadtracker/internal/database"
	"leadtracker/internal/domain"
	"leadtracker/internal/logging"
	"leadtracker/internal/metrics"
	"leadtracker/internal/repository"
	"leadtracker/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, health, err := initDatabase(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	redisClient := initRedis(ctx, cfg, &logger)
	defer (func() { _ = repository.Close(redisClient) })()
	limiter := initLimiter(cfg, redisClient, &logger)

	leadService := service.NewLeadService(
		database.NewLeadRepository(provider, logging.Component(&logger, "repository")),
		health,
		cfg.App.Interests,
		logging.Component(&logger, "service"),
	)

	httpServer, err := api.NewHTTPServer(cfg, leadService, limiter, logging.Component(&logger, "http"))
	if err != nil {
		logger.Error().Err(err).Msg("create http server")
		return err
	}

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// initDatabase builds the provider and creates the table. A database that is down at
// startup is logged, not fatal: the server still starts and /health reports it.
func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.Provider, *database.HealthChecker, error) {
	dialect, err := database.NewDialect(cfg.Database.Engine)
	if err != nil {
		return nil, nil, err
	}

	dbLogger := logging.Component(logger, "database")
	provider, err := database.NewProvider(cfg.Database, dialect, dbLogger)
	if err != nil {
		logger.Error().Err(err).Str("engine", dialect.Name()).Msg("init database")
		return nil, nil, err
	}

	health := database.NewHealthChecker(provider, dbLogger)
	logger.Info().Str("engine", dialect.Name()).Str("host", cfg.Database.Host).Msg("starting LeadTracker")

	created, err := database.NewSchema(provider, health, dbLogger).EnsureSchema(ctx)
	switch {
	case err != nil:
		logger.Error().Err(err).Msg("database schema could not be initialized")
	case created:
		logger.Info().Msg("database schema created")
	default:
		logger.Info().Msg("database schema ready")
	}

	return provider, health, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = repository.Close(redisClient)
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initLimiter(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SubmissionLimiter {
	if cfg.RateLimit.SubmissionsPerWindow <= 0 {
		return nil
	}

	memory := repository.NewMemoryLimiter()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverLimiter(
		repository.NewRedisLimiter(redisClient),
		memory,
		logging.Component(logger, "limiter"),
	)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("LeadTracker stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
