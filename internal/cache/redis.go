package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisCache) Get(ctx context.Context, domain string) (*models.AvailabilityResult, error) {
	data, err := r.client.Get(ctx, cacheKey(domain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var result models.AvailabilityResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal availability failed: %w", err)
	}
	return &result, nil
}

// Set stores result for the configured TTL; a non-positive TTL disables caching
func (r RedisCache) Set(ctx context.Context, domain string, result *models.AvailabilityResult) error {
	if r.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal availability failed: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(domain), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(domain string) string {
	return fmt.Sprintf("domain-availability:%s", domain)
}
