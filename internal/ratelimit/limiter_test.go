package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, window time.Duration, max int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLimiter(client, "rl:test", window, max), mr
}

func TestLimiterAllowsUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("allow error: %v", err)
		}
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("allow error: %v", err)
	}
	if allowed {
		t.Fatalf("fourth attempt should be blocked")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("unexpected retryAfter: %s", retryAfter)
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, time.Minute, 1)
	ctx := context.Background()

	if allowed, _, _ := limiter.Allow(ctx, "10.0.0.1"); !allowed {
		t.Fatalf("first key should be allowed")
	}
	if allowed, _, _ := limiter.Allow(ctx, "10.0.0.2"); !allowed {
		t.Fatalf("second key should not share the first key's window")
	}
	if allowed, _, _ := limiter.Allow(ctx, "10.0.0.1"); allowed {
		t.Fatalf("first key should now be blocked")
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t, time.Minute, 1)
	ctx := context.Background()

	if allowed, _, _ := limiter.Allow(ctx, "10.0.0.1"); !allowed {
		t.Fatalf("first attempt should be allowed")
	}
	if allowed, _, _ := limiter.Allow(ctx, "10.0.0.1"); allowed {
		t.Fatalf("second attempt should be blocked")
	}

	mr.FastForward(time.Minute + time.Second)

	if allowed, _, _ := limiter.Allow(ctx, "10.0.0.1"); !allowed {
		t.Fatalf("attempt after window should be allowed")
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var limiter *Limiter
	allowed, _, err := limiter.Allow(context.Background(), "10.0.0.1")
	if err != nil || !allowed {
		t.Fatalf("nil limiter should allow everything")
	}

	disabled := NewLimiter(nil, "rl:test", time.Minute, 1)
	for i := 0; i < 5; i++ {
		allowed, _, err := disabled.Allow(context.Background(), "10.0.0.1")
		if err != nil || !allowed {
			t.Fatalf("disabled limiter should allow everything")
		}
	}
}

func TestLimiterNormalizesKeys(t *testing.T) {
	limiter, _ := newTestLimiter(t, time.Minute, 1)
	ctx := context.Background()

	if allowed, _, _ := limiter.Allow(ctx, "User@Example.ORG"); !allowed {
		t.Fatalf("first attempt should be allowed")
	}
	if allowed, _, _ := limiter.Allow(ctx, " user@example.org "); allowed {
		t.Fatalf("case/space variants must share one window")
	}
}
