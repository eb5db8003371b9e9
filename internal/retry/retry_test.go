package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbenliogludev/go-job-search-agent/internal/retry"
)

// recorder collects the waits Run asks for without actually sleeping.
type recorder struct {
	waits []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

// failing returns an op that fails with the given errors in order and
// succeeds with value once they run out.
func failing(value string, errs ...error) (func(context.Context) (string, error), *int) {
	calls := 0
	return func(context.Context) (string, error) {
		calls++
		if calls <= len(errs) {
			return "", errs[calls-1]
		}
		return value, nil
	}, &calls
}

func TestRun_AlwaysRateLimitedExhausts(t *testing.T) {
	rec := &recorder{}
	calls := 0
	op := func(context.Context) (string, error) {
		calls++
		return "", errors.New("Rate limit exceeded")
	}

	_, err := retry.Run(context.Background(), retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Sleep:        rec.sleep,
	}, op)

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrMaxRetriesExceeded)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 500 * time.Millisecond}, rec.waits)
}

func TestRun_SucceedsAfterOneRateLimit(t *testing.T) {
	rec := &recorder{}
	op, calls := failing("listing saved", errors.New("Rate limit: slow down"))

	got, err := retry.Run(context.Background(), retry.Config{Sleep: rec.sleep}, op)

	require.NoError(t, err)
	assert.Equal(t, "listing saved", got)
	assert.Equal(t, 2, *calls)
	assert.Len(t, rec.waits, 1)
}

func TestRun_OtherErrorPropagatesVerbatim(t *testing.T) {
	rec := &recorder{}
	cause := errors.New("Invalid credentials")
	op, calls := failing("unused", cause)

	_, err := retry.Run(context.Background(), retry.Config{Sleep: rec.sleep}, op)

	require.Error(t, err)
	assert.Same(t, cause, err)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, rec.waits)
}

func TestRun_MarkerIsCaseSensitive(t *testing.T) {
	rec := &recorder{}
	op, calls := failing("unused", errors.New("rate limit exceeded"))

	_, err := retry.Run(context.Background(), retry.Config{Sleep: rec.sleep}, op)

	require.Error(t, err)
	assert.NotErrorIs(t, err, retry.ErrMaxRetriesExceeded)
	assert.Equal(t, 1, *calls)
}

func TestRun_StopsOnFirstSuccess(t *testing.T) {
	for k := 1; k <= 5; k++ {
		t.Run(fmt.Sprintf("success on attempt %d", k), func(t *testing.T) {
			errs := make([]error, k-1)
			for i := range errs {
				errs[i] = errors.New("Rate limit exceeded")
			}
			op, calls := failing("ok", errs...)
			rec := &recorder{}

			got, err := retry.Run(context.Background(), retry.Config{MaxAttempts: 5, Sleep: rec.sleep}, op)

			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			assert.Equal(t, k, *calls)
			assert.Len(t, rec.waits, k-1)
		})
	}
}

func TestRun_ExactlyMaxAttempts(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 7} {
		t.Run(fmt.Sprintf("max=%d", maxAttempts), func(t *testing.T) {
			calls := 0
			op := func(context.Context) (int, error) {
				calls++
				return 0, errors.New("Rate limit exceeded")
			}
			rec := &recorder{}

			_, err := retry.Run(context.Background(), retry.Config{MaxAttempts: maxAttempts, Sleep: rec.sleep}, op)

			assert.ErrorIs(t, err, retry.ErrMaxRetriesExceeded)
			assert.Equal(t, maxAttempts, calls)
			assert.Len(t, rec.waits, maxAttempts-1)
		})
	}
}

func TestRun_ExhaustionWrapsLastError(t *testing.T) {
	rec := &recorder{}
	last := &retry.RateLimitError{Err: errors.New("429 from provider")}
	op, _ := failing("unused", last, last)

	_, err := retry.Run(context.Background(), retry.Config{MaxAttempts: 2, Sleep: rec.sleep}, op)

	var rl *retry.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Same(t, last, rl)
	assert.ErrorIs(t, err, retry.ErrMaxRetriesExceeded)
}

func TestRun_DefaultShrinkingSequence(t *testing.T) {
	rec := &recorder{}
	calls := 0
	op := func(context.Context) (string, error) {
		calls++
		return "", errors.New("Rate limit exceeded")
	}

	_, err := retry.Run(context.Background(), retry.Config{MaxAttempts: 6, Sleep: rec.sleep}, op)
	require.Error(t, err)

	require.Len(t, rec.waits, 5)
	assert.Equal(t, 500*time.Millisecond, rec.waits[0])
	for i := 1; i < len(rec.waits); i++ {
		assert.LessOrEqual(t, rec.waits[i], rec.waits[i-1], "wait %d grew", i)
	}
}

func TestRun_GrowPolicyCapsAtMaxDelay(t *testing.T) {
	rec := &recorder{}
	calls := 0
	op := func(context.Context) (string, error) {
		calls++
		return "", errors.New("Rate limit exceeded")
	}

	_, err := retry.Run(context.Background(), retry.Config{
		MaxAttempts:  6,
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
		Policy:       retry.PolicyGrow,
		Sleep:        rec.sleep,
	}, op)
	require.Error(t, err)

	assert.Equal(t, []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}, rec.waits)
}

func TestRun_RetryAfterOverridesWait(t *testing.T) {
	rec := &recorder{}
	op, _ := failing("ok", &retry.RateLimitError{RetryAfter: 3 * time.Second}, errors.New("Rate limit again"))

	_, err := retry.Run(context.Background(), retry.Config{InitialDelay: time.Second, Sleep: rec.sleep}, op)

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second, 500 * time.Millisecond}, rec.waits)
}

func TestRun_OnRetryReportsAttempts(t *testing.T) {
	type call struct {
		attempt, max int
		wait         time.Duration
	}
	var calls []call
	rec := &recorder{}
	op, _ := failing("ok", errors.New("Rate limit"), errors.New("Rate limit"))

	_, err := retry.Run(context.Background(), retry.Config{
		MaxAttempts:  4,
		InitialDelay: time.Second,
		Sleep:        rec.sleep,
		OnRetry: func(attempt, maxAttempts int, wait time.Duration, _ error) {
			calls = append(calls, call{attempt, maxAttempts, wait})
		},
	}, op)

	require.NoError(t, err)
	assert.Equal(t, []call{
		{1, 4, time.Second},
		{2, 4, 500 * time.Millisecond},
	}, calls)
}

func TestRun_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	calls := 0
	op := func(context.Context) (string, error) {
		calls++
		return "", errors.New("Rate limit exceeded")
	}

	start := time.Now()
	_, err := retry.Run(ctx, retry.Config{InitialDelay: time.Minute}, op)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, calls)
}

func TestRun_PreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	op := func(context.Context) (string, error) {
		calls++
		return "ok", nil
	}

	_, err := retry.Run(ctx, retry.Config{}, op)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name   string
		cfg    retry.Config
		in     time.Duration
		expect time.Duration
	}{
		{"shrink halves", retry.Config{}, time.Second, 500 * time.Millisecond},
		{"shrink caps oversized start", retry.Config{}, time.Minute, 10 * time.Second},
		{"grow doubles", retry.Config{Policy: retry.PolicyGrow}, time.Second, 2 * time.Second},
		{"grow caps", retry.Config{Policy: retry.PolicyGrow, MaxDelay: 3 * time.Second}, 2 * time.Second, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.cfg.NextDelay(tt.in))
		})
	}
}

func TestSleep(t *testing.T) {
	t.Run("zero duration returns immediately", func(t *testing.T) {
		assert.NoError(t, retry.Sleep(context.Background(), 0))
	})

	t.Run("waits for the duration", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, retry.Sleep(context.Background(), 20*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})
}
