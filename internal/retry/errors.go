package retry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RateLimitMarker is the message fragment that marks an unstructured error
// as a rate-limit signal. Matching is case-sensitive.
const RateLimitMarker = "Rate limit"

// ErrMaxRetriesExceeded is returned by Run when every attempt was rate limited.
var ErrMaxRetriesExceeded = errors.New("exceeded maximum retries due to rate limits")

// RateLimitError is the structured form of a rate-limit failure.
// Collaborators that know the provider's retry hint set RetryAfter.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	msg := RateLimitMarker + " reached"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return msg
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// Classify reports whether err signals rate limiting and the provider's
// retry hint, if any. Structured errors win over message matching.
func Classify(err error) (rateLimited bool, retryAfter time.Duration) {
	if err == nil {
		return false, 0
	}

	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true, rl.RetryAfter
	}

	return strings.Contains(err.Error(), RateLimitMarker), 0
}

// IsRateLimited is Classify without the retry hint.
func IsRateLimited(err error) bool {
	ok, _ := Classify(err)
	return ok
}
