package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces outgoing requests to a fixed per-minute budget. A nil
// Throttle, or one built with a non-positive budget, never waits.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows requestsPerMin calls per minute with a burst of one.
func NewThrottle(requestsPerMin int) *Throttle {
	if requestsPerMin <= 0 {
		return &Throttle{}
	}
	interval := time.Minute / time.Duration(requestsPerMin)
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may be sent or ctx is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return ctx.Err()
	}
	return t.limiter.Wait(ctx)
}

// Enabled reports whether the throttle ever delays a request.
func (t *Throttle) Enabled() bool {
	return t != nil && t.limiter != nil
}
