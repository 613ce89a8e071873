// Package main is the entry point of the Lingua Learning Hub API server.
//
// The service tracks lesson progress and learning streaks for language
// learners. Architecture follows Clean Architecture and DDD:
// - Domain: progress records, activity log, streak derivation
// - Application: command/query handlers and event subscribers
// - Infrastructure: PostgreSQL persistence, Redis read-side cache, event bus
// - Interface: REST API
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lingua-hub/lingua-learning-hub/config"
	"github.com/lingua-hub/lingua-learning-hub/internal/application/command"
	"github.com/lingua-hub/lingua-learning-hub/internal/application/eventhandler"
	"github.com/lingua-hub/lingua-learning-hub/internal/application/query"
	"github.com/lingua-hub/lingua-learning-hub/internal/infrastructure/messaging"
	"github.com/lingua-hub/lingua-learning-hub/internal/infrastructure/persistence/postgres"
	"github.com/lingua-hub/lingua-learning-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/lingua-hub/lingua-learning-hub/internal/interface/http"
	"github.com/lingua-hub/lingua-learning-hub/internal/interface/http/handlers"
	"github.com/lingua-hub/lingua-learning-hub/pkg/logger"
	"github.com/lingua-hub/lingua-learning-hub/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Lingua Learning Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")

	var dbConn *postgres.Connection
	err = retry.StartupRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	log.Info("running database migrations")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	progressRepo := postgres.NewProgressRepository(dbConn)
	activityLog := postgres.NewActivityLog(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional read-side cache)
	// ─────────────────────────────────────────────────────────────────────────
	var statsCache query.SummaryCache
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		err = retry.StartupRetrier().Do(ctx, func(ctx context.Context) error {
			var cacheErr error
			redisCache, cacheErr = redis.NewCache(redisCfg)
			return cacheErr
		})
		if err != nil {
			// The cache is an optimization, not a dependency.
			log.Warn("failed to connect to Redis, stats caching disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			statsCache = redis.NewStatsCache(redisCache, log)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS & SUBSCRIBERS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	if statsCache != nil {
		invalidator := eventhandler.NewOnProgressChangedHandler(statsCache, log)
		if err := invalidator.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register stats invalidator: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	location := cfg.App.Location

	saveProgress := command.NewSaveProgressHandler(progressRepo, activityLog, eventBus, location)
	deleteProgress := command.NewDeleteProgressHandler(progressRepo, eventBus)
	getProgress := query.NewGetProgressHandler(progressRepo)
	getStreak := query.NewGetStreakHandler(activityLog, location)
	getStats := query.NewGetStatsHandler(progressRepo, activityLog, statsCache, location)
	getCalendar := query.NewGetCalendarHandler(activityLog)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("postgres", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("redis", handlers.NewCacheCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	server := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		SaveProgressHandler:   saveProgress,
		DeleteProgressHandler: deleteProgress,
		GetProgressHandler:    getProgress,
		GetStreakHandler:      getStreak,
		GetStatsHandler:       getStats,
		GetCalendarHandler:    getCalendar,
		UserResolver:          httpserver.NewHeaderUserResolver(cfg.HTTP.UserIDHeader),
		Logger:                log,
		HealthChecker:         healthChecker,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Lingua Learning Hub is running", logger.String("address", server.Address()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	}

	log.Info("starting graceful shutdown", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

// setupLogger configures structured logging from the observability config.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}
