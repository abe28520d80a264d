package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/middleware"
)

type clientOptions struct {
	server  string
	apiKey  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}
	root := &cobra.Command{
		Use:           "scanctl",
		Short:         "Submit feature scan reports and fetch the generated HTML report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("SCANORA_SERVER", "http://localhost:8080"), "intake service base URL")
	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("SCANORA_API_KEY"), "API key sent as a bearer token")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP timeout per request")

	root.AddCommand(newSubmitCmd(opts), newPollCmd(opts), newSummaryCmd())
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newSubmitCmd(opts *clientOptions) *cobra.Command {
	var wait bool
	var waitFor time.Duration
	cmd := &cobra.Command{
		Use:   "submit <report.json>",
		Short: "Post a scan report to the intake service and print the download link.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := middleware.ValidateURL(opts.server); err != nil {
				return fmt.Errorf("--server: %w", err)
			}
			res, err := submit(cmd.Context(), opts, body)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !wait {
				return nil
			}
			html, err := poll(cmd.Context(), opts, res.DownloadURL, time.Duration(res.EstimatedWaitSeconds)*time.Second/6, waitFor)
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, html)
			return err
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "poll the download link until the report is ready and print it")
	cmd.Flags().DurationVar(&waitFor, "wait-timeout", 5*time.Minute, "give up waiting after this long")
	return cmd
}

func newPollCmd(opts *clientOptions) *cobra.Command {
	var interval, waitFor time.Duration
	cmd := &cobra.Command{
		Use:   "poll <download-url>",
		Short: "Fetch a download link until it no longer serves the placeholder page.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := poll(cmd.Context(), opts, args[0], interval, waitFor)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), html)
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "delay between fetches")
	cmd.Flags().DurationVar(&waitFor, "wait-timeout", 5*time.Minute, "give up after this long")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <report.json>",
		Short: "Print the counts the report generator embeds, computed locally.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var report reports.ScanReport
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reports.Summarize(report))
		},
	}
}

type submitResponse struct {
	Message              string `json:"message"`
	DownloadURL          string `json:"download_url"`
	EstimatedWaitSeconds int    `json:"estimated_wait_seconds"`
}

func submit(ctx context.Context, opts *clientOptions, body []byte) (*submitResponse, error) {
	url := strings.TrimRight(opts.server, "/") + "/v1/reports"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+opts.apiKey)
	}

	resp, err := (&http.Client{Timeout: opts.timeout}).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("submit: %s (status %d)", e.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("submit: status %d", resp.StatusCode)
	}
	var res submitResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("submit: decode response: %w", err)
	}
	return &res, nil
}

// poll fetches url until the body is no longer the placeholder page.
func poll(ctx context.Context, opts *clientOptions, url string, interval, waitFor time.Duration) (string, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, waitFor)
	defer cancel()
	client := &http.Client{Timeout: opts.timeout}

	for {
		body, err := fetch(ctx, client, url)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("report not ready after %s", waitFor)
			}
			return "", err
		}
		if !reports.IsPlaceholder(body) {
			return string(body), nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("report not ready after %s", waitFor)
		case <-time.After(interval):
		}
	}
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch report: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
