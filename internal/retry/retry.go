package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Default policy values.
const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 600 * time.Millisecond
	DefaultMultiplier  = 2.0
	DefaultJitter      = 0.2
)

// Policy describes a retry schedule: up to MaxAttempts total attempts,
// with delays of BaseDelay * Multiplier^attempt scaled by a jitter factor
// drawn uniformly from [1-Jitter, 1+Jitter].
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Jitter      float64

	// Notify, when set, is called before each retry wait with the error
	// that triggered it and the upcoming delay.
	Notify func(err error, next time.Duration)
}

// DefaultPolicy returns the standard policy: 4 attempts, 600ms base delay,
// doubling with +/-20% jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
		Jitter:      DefaultJitter,
	}
}

// Do executes op under the policy, retrying errors the retryable predicate
// accepts. Errors the predicate rejects short-circuit without consuming a
// retry. Backoff waits honor ctx cancellation; an in-flight op is never
// aborted.
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter

	wrapped := func() (T, error) {
		v, err := op()
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
	}
	if p.Notify != nil {
		opts = append(opts, backoff.WithNotify(p.Notify))
	}

	return backoff.Retry(ctx, wrapped, opts...)
}
