package llm

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nbenliogludev/go-job-search-agent/internal/retry"
)

// classifyError maps HTTP 429 responses to retry.RateLimitError so the
// caller can back off without parsing messages. go-openai does not expose
// the Retry-After header, so RetryAfter stays zero.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &retry.RateLimitError{Err: fmt.Errorf("openai: %w", err)}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &retry.RateLimitError{Err: fmt.Errorf("openai: %w", err)}
	}

	return fmt.Errorf("openai: %w", err)
}
