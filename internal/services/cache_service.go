package services

import (
	"context"
	"errors"
	"time"

	"hunarscan/pkg/cache"
)

// CacheService is the subset of pkg/cache used by services. *cache.RedisCache
// satisfies it.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

var _ CacheService = (*cache.RedisCache)(nil)

func isCacheMiss(err error) bool {
	return errors.Is(err, cache.ErrCacheMiss)
}
