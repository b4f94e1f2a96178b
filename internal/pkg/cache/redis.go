package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/perfume_catalog/internal/config"
)

const pingTimeout = 5 * time.Second

// NewRedisClient creates a Redis client and verifies it answers PING
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// WaitForRedis retries NewRedisClient until it succeeds, ctx ends, or maxRetries is reached
func WaitForRedis(ctx context.Context, cfg *config.Config, maxRetries int, retryDelay time.Duration) (*redis.Client, error) {
	var err error

	for i := 0; i < maxRetries; i++ {
		var client *redis.Client
		client, err = NewRedisClient(ctx, cfg)
		if err == nil {
			return client, nil
		}

		if i == maxRetries-1 {
			break
		}
		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d retries: %w", maxRetries, err)
}
