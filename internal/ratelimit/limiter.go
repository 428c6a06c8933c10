// Package ratelimit implements fixed-window request counters in redis, one
// window for the whole API keyed by client IP and a tighter one for login
// attempts keyed by IP and email.
package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	redis  *redis.Client
	window time.Duration
	max    int
	prefix string
}

// NewLimiter returns a limiter over the given window. A nil redis client
// disables the limiter entirely (dev mode without redis).
func NewLimiter(redisClient *redis.Client, prefix string, window time.Duration, max int) *Limiter {
	return &Limiter{
		redis:  redisClient,
		window: window,
		max:    max,
		prefix: prefix,
	}
}

// Allow counts one hit against the window for key and reports whether the
// caller is still under the limit. retryAfter is only meaningful when allowed
// is false.
func (l *Limiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error) {
	if l == nil || l.redis == nil {
		return true, 0, nil
	}

	fullKey := l.prefix + ":" + normalizeKey(key)
	count, err := l.redis.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, fullKey, l.window).Err(); err != nil {
			return false, 0, err
		}
	}
	if count > int64(l.max) {
		ttl, err := l.redis.TTL(ctx, fullKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
