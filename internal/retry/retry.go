// Package retry re-runs an operation while it keeps failing with rate-limit
// errors. Any other failure is returned on the spot.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy decides how the wait changes between rate-limited attempts.
type Policy string

const (
	// PolicyShrink halves the wait after every retry.
	PolicyShrink Policy = "shrink"
	// PolicyGrow doubles the wait after every retry.
	PolicyGrow Policy = "grow"
)

const (
	DefaultMaxAttempts  = 100
	DefaultInitialDelay = 500 * time.Millisecond
	DefaultMaxDelay     = 10 * time.Second
)

// Config configures Run. Zero values fall back to the defaults above.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Policy       Policy

	// OnRetry is called before each wait. attempt is 1-based.
	OnRetry func(attempt, maxAttempts int, wait time.Duration, err error)

	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c Config) normalized() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultInitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.Policy == "" {
		c.Policy = PolicyShrink
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
	return c
}

// NextDelay returns the wait that follows d under the configured policy,
// capped at MaxDelay.
func (c Config) NextDelay(d time.Duration) time.Duration {
	c = c.normalized()

	var next time.Duration
	switch c.Policy {
	case PolicyGrow:
		next = d * 2
	default:
		next = time.Duration(float64(d) * 0.5)
	}

	if next > c.MaxDelay {
		return c.MaxDelay
	}
	return next
}

// Run calls op until it succeeds, fails with an error that is not rate
// limiting, or MaxAttempts attempts were made.
func Run[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.normalized()

	var zero T
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		rateLimited, retryAfter := Classify(err)
		if !rateLimited {
			return zero, err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		wait := delay
		if retryAfter > 0 {
			wait = retryAfter
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, cfg.MaxAttempts, wait, err)
		}

		if err := cfg.Sleep(ctx, wait); err != nil {
			return zero, err
		}

		delay = cfg.NextDelay(delay)
	}

	return zero, fmt.Errorf("%w (%d attempts): %w", ErrMaxRetriesExceeded, cfg.MaxAttempts, lastErr)
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
