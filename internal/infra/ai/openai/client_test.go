package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/scanora/internal/domain/ai"
)

func newTestServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	t.Run("returns first choice and sends deterministic sampling", func(t *testing.T) {
		var seen map[string]any
		srv := newTestServer(t, http.StatusOK,
			`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"<!DOCTYPE html><html></html>"}},{"index":1,"message":{"role":"assistant","content":"second"}}]}`,
			&seen)

		c := NewClient("sk-test", Options{Model: "gpt-4o-mini", BaseURL: srv.URL, MaxTokens: 4096, TopP: 1})
		out, err := c.Generate(context.Background(), "render the report")
		require.NoError(t, err)
		assert.Equal(t, "<!DOCTYPE html><html></html>", out)

		assert.Equal(t, "gpt-4o-mini", seen["model"])
		assert.EqualValues(t, 4096, seen["max_tokens"])
		assert.EqualValues(t, 1, seen["top_p"])
		assert.InDelta(t, 0, seen["temperature"], 1e-6)
		msgs := seen["messages"].([]any)
		require.Len(t, msgs, 1)
		assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
		assert.Equal(t, "render the report", msgs[0].(map[string]any)["content"])
	})

	t.Run("reasoning models use max_completion_tokens", func(t *testing.T) {
		var seen map[string]any
		srv := newTestServer(t, http.StatusOK,
			`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`, &seen)

		c := NewClient("sk-test", Options{Model: "o3-mini", BaseURL: srv.URL})
		_, err := c.Generate(context.Background(), "p")
		require.NoError(t, err)
		assert.EqualValues(t, 4096, seen["max_completion_tokens"])
		_, hasMax := seen["max_tokens"]
		assert.False(t, hasMax)
	})

	t.Run("429 maps to quota error", func(t *testing.T) {
		srv := newTestServer(t, http.StatusTooManyRequests,
			`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, nil)

		c := NewClient("sk-test", Options{BaseURL: srv.URL})
		_, err := c.Generate(context.Background(), "p")
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	})

	t.Run("no choices is an error", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{"choices":[]}`, nil)

		c := NewClient("sk-test", Options{BaseURL: srv.URL})
		_, err := c.Generate(context.Background(), "p")
		assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	})

	t.Run("empty content is returned verbatim", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK,
			`{"choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`, nil)

		c := NewClient("sk-test", Options{BaseURL: srv.URL})
		out, err := c.Generate(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})
}
