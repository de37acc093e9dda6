// Package retry runs an operation against a fixed ladder of delays.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
)

// DefaultDelays is the ladder used when none is configured: five attempts
// with 10s, 20s, 30s and 30s between them.
func DefaultDelays() []time.Duration {
	return []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second, 30 * time.Second}
}

// Classifier decides whether a failed attempt may be repeated.
type Classifier func(error) bool

// IsRetryable is the default classifier. It accepts errors that expose
// Retryable() bool somewhere in their chain and rejects everything else,
// including context cancellation.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	delays   []time.Duration
	classify Classifier
	logger   *log.Logger
}

// New builds a policy from a delay ladder. A nil ladder means DefaultDelays;
// an empty one disables retries.
func New(delays []time.Duration, logger *log.Logger) *Policy {
	if delays == nil {
		delays = DefaultDelays()
	}
	if logger == nil {
		logger = log.Default()
	}
	ladder := make([]time.Duration, len(delays))
	copy(ladder, delays)
	return &Policy{delays: ladder, classify: IsRetryable, logger: logger.WithPrefix("retry")}
}

// Attempts is the maximum number of times an operation is invoked.
func (p *Policy) Attempts() int {
	return len(p.delays) + 1
}

// Delays returns a copy of the ladder.
func (p *Policy) Delays() []time.Duration {
	out := make([]time.Duration, len(p.delays))
	copy(out, p.delays)
	return out
}

type ladder struct {
	delays []time.Duration
	next   int
}

func (l *ladder) NextBackOff() time.Duration {
	if l.next >= len(l.delays) {
		return backoff.Stop
	}
	d := l.delays[l.next]
	l.next++
	return d
}

func (l *ladder) Reset() {
	l.next = 0
}

// Do invokes fn until it succeeds, fails with a non-retryable error, or the
// ladder is exhausted. On failure the zero value is returned together with
// the last error. Cancelling ctx during a wait aborts with ctx's error.
func Do[T any](ctx context.Context, p *Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !p.classify(err) {
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}

	v, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&ladder{delays: p.delays}),
		backoff.WithMaxTries(uint(p.Attempts())),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			p.logger.Warn("attempt failed, waiting",
				"op", op, "attempt", attempt, "of", p.Attempts(), "wait", wait, "err", err)
		}),
	)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		if ctx.Err() == nil {
			p.logger.Error("giving up", "op", op, "attempts", attempt, "err", err)
		}
		return zero, err
	}
	return v, nil
}
