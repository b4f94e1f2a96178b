package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/perfume_catalog/internal/config"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/events"
	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, cfg.LogLevel).With("service", "notifier")
	appLogger.Info("Starting notifier service...")

	consumer, err := events.NewConsumer(cfg.NATS.URL, "notifier", appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	if err := consumer.Subscribe(domain.CommentEventsSubject, events.LoggingHandler(appLogger)); err != nil {
		appLogger.Fatal("Failed to subscribe to comment events", err)
	}

	appLogger.Info("Notifier service started and listening for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down notifier service...")
}
