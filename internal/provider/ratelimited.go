package provider

import (
	"context"
	"fmt"

	"github.com/ricirt/breed-query-worker/internal/ratelimiter"
)

// RateLimitedSender waits for a limiter token before every send.
type RateLimitedSender struct {
	next    Sender
	limiter *ratelimiter.Limiter
}

func NewRateLimitedSender(next Sender, limiter *ratelimiter.Limiter) *RateLimitedSender {
	return &RateLimitedSender{next: next, limiter: limiter}
}

func (s *RateLimitedSender) Send(ctx context.Context, e Email) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return s.next.Send(ctx, e)
}

var _ Sender = (*RateLimitedSender)(nil)
