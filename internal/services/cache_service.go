package services

import (
	"context"
	"time"

	"gbtravel/pkg/logger"
)

// CacheService is the slice of the Redis cache the catalog uses.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	cacheKeyFeaturedTrips        = "catalog:trips:featured"
	cacheKeyFeaturedDestinations = "catalog:destinations:featured"
	cacheKeyPopularDestinations  = "catalog:destinations:popular"
	cacheKeyCountries            = "catalog:destinations:countries"

	catalogCacheTTL = 5 * time.Minute
)

// catalogCache reads through to load on a miss. A nil backend disables caching.
type catalogCache struct {
	backend CacheService
	logger  *logger.Logger
}

func newCatalogCache(backend CacheService, log *logger.Logger) *catalogCache {
	return &catalogCache{backend: backend, logger: log}
}

func cached[T any](ctx context.Context, c *catalogCache, key string, load func() (T, error)) (T, error) {
	if c == nil || c.backend == nil {
		return load()
	}

	var value T
	if err := c.backend.Get(ctx, key, &value); err == nil {
		return value, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if err := c.backend.Set(ctx, key, value, catalogCacheTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to populate catalog cache")
	}
	return value, nil
}

func (c *catalogCache) invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.backend == nil {
		return
	}
	if err := c.backend.Delete(ctx, keys...); err != nil {
		c.logger.WithError(err).Warn("Failed to invalidate catalog cache")
	}
}
