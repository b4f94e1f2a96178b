package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/perfume_catalog/internal/config"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/events"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/database"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
	"github.com/Pesokrava/perfume_catalog/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, cfg.LogLevel).With("service", "rating-worker")
	appLogger.Info("Starting rating worker...")

	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to database")

	ratingWorker := worker.NewRatingWorker(worker.NewCalculator(db, appLogger), appLogger)

	consumer, err := events.NewConsumer(cfg.NATS.URL, "rating-worker", appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Pull(ctx, ratingWorker.HandleEvent); err != nil {
		appLogger.Fatal("Failed to consume comment events", err)
	}
	appLogger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ratingWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Rating worker stopped")
}
