// Package ratelimit provides per-client request limiting with a shared
// Redis store and an in-process fallback.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	sharedConfig "github.com/scoutystream/scouty/internal/shared/config"
)

// RateLimiter decides whether one more request for key fits the window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New returns the Redis limiter when a client is available and the local
// token bucket otherwise. It returns nil when rate limiting is disabled.
func New(cfg sharedConfig.RateLimitConfig, client *redis.Client) RateLimiter {
	if !cfg.Enabled || cfg.Limit <= 0 {
		return nil
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	if client != nil {
		return NewRedisRateLimiter(client, cfg.Limit, window)
	}
	return NewLocalRateLimiter(cfg.Limit, window)
}
