// Package main is the entrypoint for the trainyard API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acousticlabs/trainyard/internal/api"
	"github.com/acousticlabs/trainyard/internal/api/handler"
	mw "github.com/acousticlabs/trainyard/internal/api/middleware"
	"github.com/acousticlabs/trainyard/internal/cache"
	"github.com/acousticlabs/trainyard/internal/compute/sagemaker"
	"github.com/acousticlabs/trainyard/internal/config"
	"github.com/acousticlabs/trainyard/internal/lifecycle"
	"github.com/acousticlabs/trainyard/internal/objectstore/s3"
	"github.com/acousticlabs/trainyard/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "region", cfg.Compute.Region)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create compute backend
	provider, err := sagemaker.NewClient(ctx, cfg.Compute)
	if err != nil {
		return fmt.Errorf("create compute client: %w", err)
	}
	slog.Info("compute backend initialized", "provider", provider.Name())

	// 6. Create object store
	objects, err := s3.NewClient(ctx, cfg.Compute.Region, cfg.Storage.Bucket)
	if err != nil {
		return fmt.Errorf("create object store client: %w", err)
	}
	slog.Info("object store initialized", "bucket", cfg.Storage.Bucket)

	// 7. Create store and lifecycle service
	pgStore := store.NewPostgresStore(pool)
	svc := lifecycle.NewService(pgStore, provider, objects, redisCache, lifecycle.Config{
		Bucket:       cfg.Storage.Bucket,
		PresignTTL:   cfg.Storage.PresignTTL,
		ClassListTTL: cfg.Storage.ClassListTTL,
	})

	// 8. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Server.RateLimitRPM)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		Health: handler.NewHealthHandler(pgStore, redisCache, provider),

		NextJobID:  handler.NewNextJobIDHandler(svc),
		CreateJob:  handler.NewCreateJobHandler(svc),
		GetJob:     handler.NewGetJobHandler(svc),
		UpdateJob:  handler.NewUpdateJobHandler(svc),
		ListJobs:   handler.NewListJobsHandler(svc),
		DeleteJobs: handler.NewDeleteJobsHandler(svc),

		AddClasses:     handler.NewAddClassesHandler(svc),
		AutoAddClasses: handler.NewAutoAddClassesHandler(svc),
		RemoveClasses:  handler.NewRemoveClassesHandler(svc),

		LaunchPreprocess:    handler.NewLaunchPreprocessHandler(svc),
		PreprocessStatus:    handler.NewPreprocessStatusHandler(svc),
		PreprocessedDataset: handler.NewPreprocessedDatasetHandler(svc),

		SetTrainConfig:   handler.NewSetTrainConfigHandler(svc),
		ClearTrainConfig: handler.NewClearTrainConfigHandler(svc),
		LaunchTraining:   handler.NewLaunchTrainingHandler(svc),
		TrainingStatus:   handler.NewTrainingStatusHandler(svc),
		PurgeTraining:    handler.NewPurgeTrainingHandler(svc),
		TrainingPlots:    handler.NewTrainingPlotsHandler(svc),

		SetDeployConfig:   handler.NewSetDeployConfigHandler(svc),
		ClearDeployConfig: handler.NewClearDeployConfigHandler(svc),
		Deploy:            handler.NewDeployHandler(svc),
		DeployStatus:      handler.NewDeployStatusHandler(svc),
		ScaleEndpoint:     handler.NewScaleEndpointHandler(svc),
		Teardown:          handler.NewTeardownHandler(svc),

		SetThreshold:   handler.NewSetThresholdHandler(svc),
		ClearThreshold: handler.NewClearThresholdHandler(svc),
		Predict:        handler.NewPredictHandler(svc),
		PredictDisplay: handler.NewPredictDisplayHandler(svc),
		Approve:        handler.NewApproveHandler(svc),
		Reject:         handler.NewRejectHandler(svc),
		ApprovedJobs:   handler.NewApprovedJobsHandler(svc),

		ListClasses:  handler.NewListClassesHandler(svc),
		ClassCount:   handler.NewClassCountHandler(svc),
		ClassSamples: handler.NewClassSamplesHandler(svc),

		CreateKey: handler.NewCreateKeyHandler(pgStore),
		ListKeys:  handler.NewListKeysHandler(pgStore),
		RevokeKey: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
