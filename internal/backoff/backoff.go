// Package backoff retries fallible calls with a bounded exponential delay.
//
// Attempt n (0-based) waits StartSleep * Factor^n before the next try. Once that
// delay would exceed BorderSleep the policy gives up and the last error is returned.
package backoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/apperr"
	cbackoff "github.com/cenkalti/backoff/v4"
)

const (
	DefaultStartSleep  = 100 * time.Millisecond
	DefaultFactor      = 2.0
	DefaultBorderSleep = 10 * time.Second
)

// Policy is a cenkalti/backoff BackOff with a hard border instead of a capped interval.
type Policy struct {
	StartSleep  time.Duration
	Factor      float64
	BorderSleep time.Duration

	attempt int
}

// NewPolicy returns a policy with the default start and factor and the given border.
func NewPolicy(border time.Duration) *Policy {
	return &Policy{
		StartSleep:  DefaultStartSleep,
		Factor:      DefaultFactor,
		BorderSleep: border,
	}
}

// Clone returns a fresh copy so that concurrent callers never share attempt counters.
func (p *Policy) Clone() *Policy {
	return &Policy{
		StartSleep:  p.StartSleep,
		Factor:      p.Factor,
		BorderSleep: p.BorderSleep,
	}
}

// NextBackOff implements cbackoff.BackOff.
func (p *Policy) NextBackOff() time.Duration {
	sleep := float64(p.StartSleep) * math.Pow(p.Factor, float64(p.attempt))
	if sleep > float64(p.BorderSleep) {
		return cbackoff.Stop
	}
	p.attempt++
	return time.Duration(sleep)
}

// Reset implements cbackoff.BackOff.
func (p *Policy) Reset() {
	p.attempt = 0
}

// Delays lists every sleep the policy allows before giving up.
func (p *Policy) Delays() []time.Duration {
	probe := p.Clone()
	var delays []time.Duration
	for {
		d := probe.NextBackOff()
		if d == cbackoff.Stop {
			return delays
		}
		delays = append(delays, d)
	}
}

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	return cbackoff.Permanent(err)
}

type options struct {
	timer cbackoff.Timer
}

type Option func(*options)

// WithTimer replaces the wall-clock timer, mainly for tests.
func WithTimer(t cbackoff.Timer) Option {
	return func(o *options) {
		o.timer = t
	}
}

// Retry runs fn until it succeeds, returns a permanent error, or the policy is exhausted.
// Exhaustion is reported as *apperr.RetryExhaustedError wrapping the last failure.
func Retry(ctx context.Context, name string, policy *Policy, fn func(ctx context.Context) error, opts ...Option) error {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	p := policy.Clone()
	attempts := 0
	permanent := false

	op := func() error {
		attempts++
		err := fn(ctx)
		var perm *cbackoff.PermanentError
		permanent = errors.As(err, &perm)
		return err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("Operation failed, backing off",
			"operation", name,
			"attempt", attempts,
			"wait", wait,
			"error", err,
		)
	}

	err := cbackoff.RetryNotifyWithTimer(op, cbackoff.WithContext(p, ctx), notify, o.timer)
	if err == nil {
		return nil
	}

	if permanent {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return fmt.Errorf("%s: %w", name, err)
	}

	slog.Error("Operation call limit reached", "operation", name, "attempts", attempts, "error", err)
	return apperr.NewRetryExhausted(name, attempts, err)
}

// RetryValue is Retry for calls that produce a value.
func RetryValue[T any](ctx context.Context, name string, policy *Policy, fn func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var result T
	err := Retry(ctx, name, policy, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, opts...)
	return result, err
}
