package ai

import "context"

// Client renders a prompt into text with a hosted model.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientFactory builds a Client bound to an explicit credential.
type ClientFactory func(apiKey string) (Client, error)
