package ratelimit

import (
	"context"
	"time"
)

// Limit allows at most Requests within a sliding Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

type RateLimiter interface {
	// Allow records one request for key and reports whether every limit still holds.
	Allow(ctx context.Context, key string, limits ...Limit) (bool, error)
	Reset(ctx context.Context, key string) error
}
