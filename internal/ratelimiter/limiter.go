package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket guarding the outbound email transport.
// Hosted mail services enforce a per-second send quota; a burst of
// notifications from one poll cycle must not exceed it.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter allowing ratePerSec sends per second.
// A non-positive rate disables limiting.
func New(ratePerSec int) *Limiter {
	if ratePerSec <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	burst := ratePerSec // burst == rate: prevents any "saved up" burst above the limit
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst)}
}

// Wait blocks until the limiter grants a token.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
