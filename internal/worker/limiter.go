// Package worker provides the pipeline's concurrency primitives: a bounded
// pool for per-claim work and a rate limiter for external service calls.
package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles calls to one external service (judge or encoder).
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter creates a limiter allowing requestsPerSecond with the given
// burst. A non-positive rate returns nil, meaning unthrottled.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a call is allowed or ctx is done. A nil limiter never
// blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.rl.Wait(ctx)
}

// Allow reports whether a call may proceed right now without waiting.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.rl.Allow()
}
