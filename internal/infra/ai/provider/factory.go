package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bryanwahyu/scanora/internal/config"
	domain "github.com/bryanwahyu/scanora/internal/domain/ai"
	"github.com/bryanwahyu/scanora/internal/infra/ai/gemini"
	"github.com/bryanwahyu/scanora/internal/infra/ai/openai"
)

// NewFactory returns a ClientFactory for the configured provider. The API key
// is supplied per call so credentials never pass through process state.
func NewFactory(cfg config.LLMConfig) (domain.ClientFactory, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case "openai", "":
		return func(apiKey string) (domain.Client, error) {
			return openai.NewClient(apiKey, openai.Options{
				Model:       cfg.Model,
				BaseURL:     cfg.BaseURL,
				MaxTokens:   cfg.MaxTokens,
				Temperature: cfg.Temperature,
				TopP:        cfg.TopP,
				HTTPClient:  httpClient,
			}), nil
		}, nil
	case "gemini":
		return func(apiKey string) (domain.Client, error) {
			return gemini.NewClient(context.Background(), apiKey, gemini.Options{
				Model:       cfg.Model,
				BaseURL:     cfg.BaseURL,
				MaxTokens:   cfg.MaxTokens,
				Temperature: cfg.Temperature,
				TopP:        cfg.TopP,
				HTTPClient:  httpClient,
			})
		}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
