package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/wordpath-api/internal/cache"
	"github.com/phrazzld/wordpath-api/internal/config"
	"github.com/phrazzld/wordpath-api/internal/platform/postgres"
	"github.com/phrazzld/wordpath-api/internal/platform/redis"
	"github.com/phrazzld/wordpath-api/internal/recommend"
	"github.com/phrazzld/wordpath-api/internal/redact"
	"github.com/phrazzld/wordpath-api/internal/service"
	"github.com/phrazzld/wordpath-api/internal/service/auth"
	"github.com/phrazzld/wordpath-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// sweepInterval is how often expired in-memory cache entries are dropped.
const sweepInterval = time.Minute

// application holds the shared dependencies and releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	redis     *redis.Store
	stopSweep context.CancelFunc

	learnerService service.LearnerService
	masteryService service.MasteryService
	contentService service.ContentService
	videoService   service.VideoService
}

// newApplication wires stores, cache and services. db must already be
// connected.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	learners := postgres.NewPostgresLearnerStore(db, logger)
	words := postgres.NewPostgresWordStore(db, logger)
	records := postgres.NewPostgresMasteryStore(db, logger)
	videos := postgres.NewPostgresVideoStore(db, logger)
	content := postgres.NewPostgresContentStore(db, logger)
	known := postgres.NewPostgresKnownWordStore(db, logger)
	runTx := store.NewTxRunner(db)

	coordinator := app.setupCache(ctx)

	var err error
	app.learnerService, err = service.NewLearnerService(
		learners, records, runTx, auth.NewBcryptHasher(bcrypt.DefaultCost), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create learner service: %w", err)
	}
	app.masteryService, err = service.NewMasteryService(learners, words, records, runTx, coordinator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mastery service: %w", err)
	}
	app.contentService, err = service.NewContentService(content, known, learners, runTx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create content service: %w", err)
	}
	app.videoService, err = service.NewVideoService(videos, words, records, learners, runTx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create video service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// setupCache builds the mastered-words cache. With a reachable redis the
// redis store sits behind a breaker that falls back to memory; otherwise the
// cache lives in memory only.
func (app *application) setupCache(ctx context.Context) *cache.Coordinator {
	cfg := app.config.Cache
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	memory := cache.NewMemoryStore()

	sweepCtx, cancel := context.WithCancel(context.Background())
	app.stopSweep = cancel
	go memory.RunSweeper(sweepCtx, sweepInterval)

	var backend cache.Store = memory
	if cfg.RedisURL != "" {
		primary, err := redis.New(ctx, cfg.RedisURL, app.logger)
		if err != nil {
			app.logger.Warn("redis unavailable, cache running in memory only",
				slog.String("error", redact.Error(err)))
			return cache.NewCoordinator(memory, ttl, app.logger)
		}
		app.redis = primary
		backend = cache.NewFallbackStore(primary, memory, cache.FallbackConfig{
			OpTimeout:        time.Duration(cfg.OpTimeoutMillis) * time.Millisecond,
			FailureThreshold: cfg.BreakerFailureThreshold,
			Cooldown:         time.Duration(cfg.BreakerCooldownSeconds) * time.Second,
		}, app.logger)
		app.logger.Info("cache backed by redis with in-memory fallback")
	} else {
		app.logger.Info("cache running in memory only")
	}

	return cache.NewCoordinator(backend, ttl, app.logger)
}

// recommendDefaults returns the configured video ranking bounds.
func (app *application) recommendDefaults() recommend.Options {
	return recommend.Options{
		Limit:      app.config.Recommend.DefaultLimit,
		MaxUnknown: app.config.Recommend.MaxUnknown,
	}
}

// health reports whether the database answers. The cache is not checked
// because it degrades to memory on its own.
func (app *application) health(ctx context.Context) error {
	return app.db.PingContext(ctx)
}

// cleanup releases resources acquired by newApplication.
func (app *application) cleanup() {
	if app.stopSweep != nil {
		app.stopSweep()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}
