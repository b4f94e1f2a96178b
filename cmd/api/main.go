package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/perfume_catalog/internal/config"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/perfume_catalog/internal/delivery/http"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/handler"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/middleware"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/auth"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/cache"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/database"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/perfume_catalog/internal/repository/cache"
	"github.com/Pesokrava/perfume_catalog/internal/repository/postgres"
	"github.com/Pesokrava/perfume_catalog/internal/usecase/brand"
	"github.com/Pesokrava/perfume_catalog/internal/usecase/feedback"
	"github.com/Pesokrava/perfume_catalog/internal/usecase/member"
	"github.com/Pesokrava/perfume_catalog/internal/usecase/perfume"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, cfg.LogLevel)
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting Perfume Catalog API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	if err := database.RunMigrations(db); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(context.Background(), cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg.NATS.URL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	memberRepo := postgres.NewMemberRepository(db)
	brandRepo := postgres.NewBrandRepository(db)
	perfumeRepo := postgres.NewPerfumeRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.CommentsListTTL)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	feedbackService := feedback.NewService(
		commentRepo,
		perfumeRepo,
		redisCache,
		publisher,
		feedback.Policy{AllowAdminReviews: cfg.Feedback.AllowAdminReviews},
		appLogger.With("component", "feedback"),
	)
	memberService := member.NewService(memberRepo, hasher, tokens, feedbackService, appLogger)
	perfumeService := perfume.NewService(perfumeRepo, feedbackService, redisCache, appLogger)
	brandService := brand.NewService(brandRepo, perfumeRepo, appLogger)

	handlers := httpDelivery.Handlers{
		Auth: handler.NewAuthHandler(memberService, handler.CookieConfig{
			Name:   cfg.Auth.CookieName,
			TTL:    cfg.Auth.TokenTTL,
			Secure: cfg.Env == "production",
		}, appLogger),
		Member:   handler.NewMemberHandler(memberService, appLogger),
		Brand:    handler.NewBrandHandler(brandService, appLogger),
		Perfume:  handler.NewPerfumeHandler(perfumeService, appLogger),
		Feedback: handler.NewFeedbackHandler(feedbackService, appLogger),
	}

	router := httpDelivery.NewRouter(
		handlers,
		middleware.NewAuth(tokens, memberService, cfg.Auth.CookieName, appLogger),
		middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst),
		cfg,
		appLogger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
