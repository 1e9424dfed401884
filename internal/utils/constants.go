package utils

import "time"

const (
	AppName    = "HunarScan"
	AppVersion = "1.0.0"

	StatusSuccess = "success"
	StatusError   = "error"

	ErrInternalServer = "Internal Server Error"

	// Reviews
	MaxReviewLength       = 1000
	MaxIdempotencyKeySize = 128
	IdempotencyKeyHeader  = "Idempotency-Key"
	RequestIDHeader       = "X-Request-ID"

	// Worker profile
	ProfilePathPrefix = "/w/"

	// Cache
	WorkerCachePrefix     = "worker:"
	ReviewRateLimitPrefix = "ratelimit:reviews:"
	ReviewRateLimitWindow = time.Minute

	NotificationTimeout = 3 * time.Second
)
