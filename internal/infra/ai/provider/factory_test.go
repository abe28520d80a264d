package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/scanora/internal/config"
	"github.com/bryanwahyu/scanora/internal/infra/ai/gemini"
	"github.com/bryanwahyu/scanora/internal/infra/ai/openai"
)

func TestNewFactory(t *testing.T) {
	cfg := config.Default().LLM

	t.Run("openai", func(t *testing.T) {
		f, err := NewFactory(cfg)
		require.NoError(t, err)
		c, err := f("sk-1")
		require.NoError(t, err)
		assert.IsType(t, &openai.Client{}, c)
	})

	t.Run("gemini", func(t *testing.T) {
		cfg := cfg
		cfg.Provider = "gemini"
		f, err := NewFactory(cfg)
		require.NoError(t, err)
		c, err := f("g-1")
		require.NoError(t, err)
		assert.IsType(t, &gemini.Client{}, c)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := cfg
		cfg.Provider = "bedrock"
		_, err := NewFactory(cfg)
		assert.Error(t, err)
	})
}
