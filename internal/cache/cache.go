package cache

import (
	"context"
	"errors"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// AvailabilityCache stores successful availability lookups per domain
type AvailabilityCache interface {
	Get(ctx context.Context, domain string) (*models.AvailabilityResult, error)
	Set(ctx context.Context, domain string, result *models.AvailabilityResult) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache is used when Redis is not configured; every Get misses
type NopCache struct{}

func (NopCache) Get(ctx context.Context, domain string) (*models.AvailabilityResult, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(ctx context.Context, domain string, result *models.AvailabilityResult) error {
	return nil
}
