package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNoOpRateLimiter(t *testing.T) {
	limiter := &NoOpRateLimiter{}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(ctx, "any-key")
		if err != nil {
			t.Errorf("Allow() error = %v, want nil", err)
		}
		if !allowed {
			t.Error("Allow() = false, want true")
		}
	}

	if err := limiter.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestNewRedisRateLimiterInvalidURL(t *testing.T) {
	if _, err := NewRedisRateLimiter("not-a-valid-url", 100, time.Minute); err == nil {
		t.Error("NewRedisRateLimiter() with invalid URL should return error")
	}
}

func TestRedisRateLimiterSlidingWindow(t *testing.T) {
	srv := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+srv.Addr(), 3, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter: %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "sender-a")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "sender-a")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Error("fourth request in window should be rejected")
	}

	// A different key has its own window.
	allowed, err = limiter.Allow(ctx, "sender-b")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("separate sender should not share the window")
	}
}

func TestRedisRateLimiterWindowExpiry(t *testing.T) {
	srv := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+srv.Addr(), 1, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter: %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	if allowed, _ := limiter.Allow(ctx, "sender"); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "sender"); allowed {
		t.Fatal("second request inside the window should be rejected")
	}

	time.Sleep(60 * time.Millisecond)
	if allowed, _ := limiter.Allow(ctx, "sender"); !allowed {
		t.Error("request after the window slides should be allowed")
	}
}
