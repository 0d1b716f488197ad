package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window rate limiter backed by Redis. Keys are scoped
// by client IP and purpose so login attempts do not consume the register
// budget.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

func requestKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// Allow records one request for ip/purpose and reports whether it is within
// the limit. The window TTL is set when the counter is first created.
func (l *Limiter) Allow(ctx context.Context, ip, purpose string) (bool, error) {
	key := requestKey(ip, purpose)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}

// Reset clears the counter for ip/purpose.
func (l *Limiter) Reset(ctx context.Context, ip, purpose string) error {
	if err := l.client.Del(ctx, requestKey(ip, purpose)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
