package services

import (
	"context"
	"time"

	"hunarscan/internal/utils"
)

// RateLimiter decides whether key may perform one more action.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type windowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

type cacheRateLimiter struct {
	counter windowCounter
	limit   int64
	window  time.Duration
}

// NewReviewRateLimiter allows limit review submissions per client per
// minute. A non-positive limit disables limiting.
func NewReviewRateLimiter(counter windowCounter, limit int) RateLimiter {
	return &cacheRateLimiter{
		counter: counter,
		limit:   int64(limit),
		window:  utils.ReviewRateLimitWindow,
	}
}

func (l *cacheRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 || l.counter == nil {
		return true, nil
	}
	n, err := l.counter.IncrementWindow(ctx, utils.ReviewRateLimitPrefix+key, l.window)
	if err != nil {
		return true, err
	}
	return n <= l.limit, nil
}
