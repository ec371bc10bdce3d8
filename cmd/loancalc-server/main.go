package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fintools/loancalc/internal/cache"
	"github.com/fintools/loancalc/internal/logging"
	"github.com/fintools/loancalc/internal/server"
	"github.com/fintools/loancalc/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	// Load .env for local development; absence is not an error.
	_ = godotenv.Load()

	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override (e.g. :8080)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.BuildLogger(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	responseCache, cleanup, err := buildCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize response cache",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if cleanup != nil {
		defer cleanup()
	}

	handler := server.NewHandler(logger, cfg.RequestSizeBytes(), version, responseCache)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(fmt.Sprintf("listening on %s", cfg.Address),
			zap.String("op", "main"),
			zap.String("version", version),
			zap.String("cacheBackend", cfg.Cache.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("shutting down", zap.String("op", "main"))
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server terminated",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// buildCache selects the response cache backend from configuration. The
// LOANCALC_REDIS_PASSWORD environment variable overrides the configured
// redis password so secrets can stay out of config files.
func buildCache(ctx context.Context, cfg *server.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case server.CacheBackendOff:
		return nil, nil, nil
	case server.CacheBackendRedis:
		password := cfg.Cache.Redis.Password
		if env := os.Getenv("LOANCALC_REDIS_PASSWORD"); env != "" {
			password = env
		}

		redisCache := cache.NewRedis(cfg.Cache.Redis.Address, password, cfg.Cache.Redis.DB, cfg.CacheTTL())

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(pingCtx); err != nil {
			_ = redisCache.Close()
			return nil, nil, fmt.Errorf("redis at %s: %w", cfg.Cache.Redis.Address, err)
		}

		cleanup := func() {
			if err := redisCache.Close(); err != nil {
				logger.Warn("failed to close redis client",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}
		return redisCache, cleanup, nil
	default:
		return cache.NewMemory(cfg.CacheTTL()), nil, nil
	}
}
