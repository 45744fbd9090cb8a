// Package main provides the InterveneR API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/roadwise-ai/intervener/cmd/intervener-api/handlers"
	"github.com/roadwise-ai/intervener/internal/cache"
	"github.com/roadwise-ai/intervener/internal/config"
	"github.com/roadwise-ai/intervener/internal/kb"
	"github.com/roadwise-ai/intervener/internal/observability"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "intervener-api",
	})

	store, source, err := openKB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load knowledge base")
	}

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("kb_source", cfg.KB.Source).
		Int("kb_size", store.Len()).
		Msg("Starting InterveneR API")

	respCache, err := openCache(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect response cache")
	}
	defer respCache.Close()

	router := NewRouter(logger, cfg, store, source, respCache)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

// openKB loads the knowledge base from the configured source and returns the
// store along with a reload source for the admin endpoint.
func openKB(cfg *config.Config) (*kb.Store, handlers.RecordSource, error) {
	switch cfg.KB.Source {
	case "sqlite":
		source := func() ([]kb.Record, error) {
			return kb.ReadSQLite(context.Background(), cfg.KB.Path)
		}
		records, err := source()
		if err != nil {
			return nil, nil, err
		}
		store, err := kb.NewStore(records)
		return store, source, err
	default:
		source := func() ([]kb.Record, error) {
			return kb.ReadCSV(cfg.KB.Path)
		}
		records, err := source()
		if err != nil {
			return nil, nil, err
		}
		store, err := kb.NewStore(records)
		return store, source, err
	}
}

// openCache builds the configured response cache driver.
func openCache(cfg *config.Config, logger *observability.Logger) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, err
		}
		logger.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("Using Redis response cache")
		return client, nil
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
}
