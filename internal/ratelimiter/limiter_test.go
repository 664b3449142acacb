package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/ricirt/breed-query-worker/internal/ratelimiter"
)

func TestLimiter_BurstUpToRate(t *testing.T) {
	l := ratelimiter.New(5)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("wait %d: unexpected error %v", i, err)
		}
	}
}

func TestLimiter_BlocksBeyondBurst(t *testing.T) {
	l := ratelimiter.New(1)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected second wait to fail before a token is available")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := ratelimiter.New(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 1000; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("wait %d: unexpected error %v", i, err)
		}
	}
}
