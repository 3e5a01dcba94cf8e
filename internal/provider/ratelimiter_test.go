package provider

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterFirstCallImmediate(t *testing.T) {
	r := NewRateLimiter(time.Hour)
	start := time.Now()
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("first call should not block")
	}
}

func TestRateLimiterSpacesCalls(t *testing.T) {
	r := NewRateLimiter(50 * time.Millisecond)
	_ = r.Wait(context.Background())
	start := time.Now()
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("second call returned too early: %v", elapsed)
	}
}

func TestRateLimiterRespectsContext(t *testing.T) {
	r := NewRateLimiter(time.Hour)
	_ = r.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); err == nil {
		t.Fatalf("expected context error while waiting")
	}
}
