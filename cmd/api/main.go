package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fieldtel/number-provisioning-backend/internal/api/rest"
	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/cache"
	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/config"
	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/database"
	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/telemetry"
	"github.com/fieldtel/number-provisioning-backend/internal/service/provisioning"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, "npb-api", cfg)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	infraLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build infrastructure logger: %v", err)
	}
	defer infraLogger.Sync()

	var repo provisioning.NumberRepository
	if cfg.Database.Enabled {
		pool, err := database.NewPool(ctx, &cfg.Database, infraLogger)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		repo = database.NewProvisionedNumberRepository(pool, infraLogger)
	}

	var store provisioning.UniquenessStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisUniquenessStore(&cfg.Redis, infraLogger)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	}

	var rng *rand.Rand
	if cfg.Generation.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Generation.Seed))
	}
	gen := numbering.NewGenerator(rng)

	svc := provisioning.NewService(logger, gen, promCollector{}, repo, store)
	server := rest.NewServer(cfg, logger, svc, metricsHandler())

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}
