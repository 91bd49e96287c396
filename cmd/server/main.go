package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-rotation/internal/config"
	"github.com/stemsi/exstem-rotation/internal/database"
	"github.com/stemsi/exstem-rotation/internal/handler"
	"github.com/stemsi/exstem-rotation/internal/logger"
	"github.com/stemsi/exstem-rotation/internal/middleware"
	"github.com/stemsi/exstem-rotation/internal/repository"
	"github.com/stemsi/exstem-rotation/internal/rotation"
	"github.com/stemsi/exstem-rotation/internal/router"
	"github.com/stemsi/exstem-rotation/internal/service"
	"github.com/stemsi/exstem-rotation/internal/validator"
	"github.com/stemsi/exstem-rotation/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExStem Rotation")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.MigrationsPath, cfg.DatabaseURL, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate schema")
		}
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.MaxDBConns, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	testRepo := repository.NewAssessmentRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	selectionRepo := repository.NewSelectionRepository(pool)

	// ─── Initialize Rotation Engine ────────────────────────────────────
	var permCache *rotation.PermutationCache
	if cfg.PermutationCacheSize > 0 {
		permCache, err = rotation.NewPermutationCache(cfg.PermutationCacheSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create permutation cache")
		}
	}
	engine := rotation.NewEngine(permCache)

	// ─── Initialize Services ──────────────────────────────────────────
	queue := worker.NewSelectionQueue(rdb)
	authService := service.NewAuthService(cfg.JWTSecret)
	rotationService := service.NewRotationService(
		testRepo,
		questionRepo,
		service.NewRedisPayloadCache(rdb, cfg.PayloadCacheTTL),
		queue,
		engine,
		log,
	)
	assessmentService := service.NewAssessmentService(testRepo, questionRepo, rotationService, log)
	attemptService := service.NewAttemptService(rdb)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Rotation:   handler.NewRotationHandler(rotationService, attemptService),
		Assessment: handler.NewAssessmentHandler(assessmentService, rotationService, cfg.MaxPreviewAttempts),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	selectionWorker := worker.NewSelectionWorker(queue, selectionRepo, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		selectionWorker.Start(workerCtx)
	}()

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, limiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the selection worker and let it flush its pending batch.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Selection worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
