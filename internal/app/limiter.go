// # internal/app/limiter.go
package app

import (
	"context"

	"golang.org/x/time/rate"
)

// limiter wraps rate.Limiter to pace watch-mode regenerations: a burst
// of edits runs immediately, sustained churn is held to the refill rate
// without dropping the final regeneration.
type limiter struct {
	inner *rate.Limiter
}

// newLimiter creates a token bucket limiter.
// r: tokens per second.
// b: burst size.
func newLimiter(r float64, b int) *limiter {
	return &limiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Wait blocks until n tokens are available.
func (l *limiter) Wait(ctx context.Context, n int) error {
	return l.inner.WaitN(ctx, n)
}
