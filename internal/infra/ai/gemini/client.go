package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	domain "github.com/bryanwahyu/scanora/internal/domain/ai"
)

const defaultModel = "gemini-2.0-flash"

// Options are the sampling settings sent with every request.
type Options struct {
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	HTTPClient  *http.Client
}

// Client renders prompts with the Gemini API.
type Client struct {
	client *genai.Client
	opts   Options
}

// NewClient binds the client to an explicit API key.
func NewClient(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: client, opts: opts}, nil
}

// Generate returns the first text part of the first candidate, or "" when
// the candidate carries no text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.opts.Temperature),
		TopP:        genai.Ptr(c.opts.TopP),
	}
	if c.opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(c.opts.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, genai.Text(prompt), cfg)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.ErrEmptyResponse
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought && part.Text != "" {
			return part.Text, nil
		}
	}
	// a candidate without text is an empty reply, not a failure
	return "", nil
}

func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == http.StatusTooManyRequests
	}
	return false
}
