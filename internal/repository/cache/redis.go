package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
)

// RedisCache caches per-perfume comment lists
type RedisCache struct {
	client          *redis.Client
	commentsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, commentsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:          client,
		commentsListTTL: commentsListTTL,
	}
}

func (c *RedisCache) commentsListKey(perfumeID uuid.UUID, gen int64) string {
	return fmt.Sprintf("perfume:%s:comments:%d", perfumeID.String(), gen)
}

func (c *RedisCache) generationKey(perfumeID uuid.UUID) string {
	return fmt.Sprintf("perfume:%s:gen", perfumeID.String())
}

func (c *RedisCache) perfumeCacheKeysSet(perfumeID uuid.UUID) string {
	return fmt.Sprintf("perfume:%s:cache_keys", perfumeID.String())
}

// Generation returns the current cache generation of a perfume. It must be read
// before the database so that a fill racing with an invalidation lands on a dead key.
func (c *RedisCache) Generation(ctx context.Context, perfumeID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(perfumeID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}

// GetCommentsList returns the comments cached under a generation, or domain.ErrNotFound on a miss
func (c *RedisCache) GetCommentsList(ctx context.Context, perfumeID uuid.UUID, gen int64) ([]*domain.Comment, error) {
	val, err := c.client.Get(ctx, c.commentsListKey(perfumeID, gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	comments := []*domain.Comment{}
	if err := json.Unmarshal(val, &comments); err != nil {
		return nil, err
	}

	return comments, nil
}

// SetCommentsList stores the comments of a perfume under a generation and tracks the key in a SET
func (c *RedisCache) SetCommentsList(ctx context.Context, perfumeID uuid.UUID, gen int64, comments []*domain.Comment) error {
	key := c.commentsListKey(perfumeID, gen)
	trackingKey := c.perfumeCacheKeysSet(perfumeID)

	data, err := json.Marshal(comments)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.commentsListTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.commentsListTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidatePerfume bumps the perfume's generation and removes every tracked entry
func (c *RedisCache) InvalidatePerfume(ctx context.Context, perfumeID uuid.UUID) error {
	if err := c.client.Incr(ctx, c.generationKey(perfumeID)).Err(); err != nil {
		return err
	}

	trackingKey := c.perfumeCacheKeysSet(perfumeID)
	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys = append(keys, trackingKey)
	return c.client.Unlink(ctx, keys...).Err()
}
