package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

// HTTPInvoker posts jobs to the worker service's invocation endpoint. The
// worker answers 202 before running the job, so a nil error only confirms
// the hand-off.
type HTTPInvoker struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewHTTPInvoker(url string, timeout time.Duration) *HTTPInvoker {
	return &HTTPInvoker{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (h *HTTPInvoker) Dispatch(ctx context.Context, job reports.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("invoke worker: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("invoke worker: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
