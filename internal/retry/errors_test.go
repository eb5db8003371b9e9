package retry_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nbenliogludev/go-job-search-agent/internal/retry"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		limited    bool
		retryAfter time.Duration
	}{
		{"nil", nil, false, 0},
		{"plain other error", errors.New("Invalid credentials"), false, 0},
		{"message marker", errors.New("Rate limit exceeded"), true, 0},
		{"marker mid-message", errors.New("openai: Rate limit reached for gpt-4o"), true, 0},
		{"lowercase is not a match", errors.New("rate limit exceeded"), false, 0},
		{"structured", &retry.RateLimitError{RetryAfter: 2 * time.Second}, true, 2 * time.Second},
		{"wrapped structured", fmt.Errorf("llm error: %w", &retry.RateLimitError{RetryAfter: time.Second}), true, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limited, after := retry.Classify(tt.err)
			assert.Equal(t, tt.limited, limited)
			assert.Equal(t, tt.retryAfter, after)
			assert.Equal(t, tt.limited, retry.IsRateLimited(tt.err))
		})
	}
}

func TestRateLimitError(t *testing.T) {
	cause := errors.New("status 429")
	err := &retry.RateLimitError{RetryAfter: 5 * time.Second, Err: cause}

	assert.Contains(t, err.Error(), retry.RateLimitMarker)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "retry after 5s")
	assert.ErrorIs(t, err, cause)
}
