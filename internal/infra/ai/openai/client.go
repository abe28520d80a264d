package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/scanora/internal/domain/ai"
)

const defaultMaxTokens = 4096

// Options are the sampling settings sent with every request.
type Options struct {
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	HTTPClient  *http.Client
}

type Client struct {
	*openai.Client
	opts Options
}

// NewClient binds the client to an explicit API key.
func NewClient(apiKey string, opts Options) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), opts: opts}
}

// Generate sends prompt as one user message and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		TopP:  c.opts.TopP,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and a fixed temperature
	if isReasoningModel(model) {
		req.MaxCompletionTokens = c.opts.MaxTokens
	} else {
		req.MaxTokens = c.opts.MaxTokens
		req.Temperature = c.opts.Temperature
		if req.Temperature == 0 {
			// the field is omitempty; a plain zero would fall back to the API default of 1
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	// an empty content string is a valid reply and is published unchanged
	if len(resp.Choices) == 0 {
		return "", domain.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
