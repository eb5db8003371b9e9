package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

type Options struct {
	Model             string
	BaseURL           string
	Temperature       float32
	MaxTokens         int
	RequestsPerMinute int
	Vision            bool
}

type OpenAIClient struct {
	client  *openai.Client
	limiter *rate.Limiter
	opts    Options
}

// NewOpenAIClient reads OPENAI_API_KEY (and optionally OPENAI_BASE_URL)
// from the environment.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL == "" {
		opts.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 400
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		limiter: newLimiter(opts.RequestsPerMinute),
		opts:    opts,
	}, nil
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// createChatCompletion paces the request through the limiter and turns
// provider throttling into retry.RateLimitError.
func (c *OpenAIClient) createChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, classifyError(err)
	}
	return resp, nil
}
