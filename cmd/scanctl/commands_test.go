package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

const sample = `{"scannedFiles":["a.js","b.js"],"features":[{"featureId":"fetch","supported":true,"occurrences":2},{"featureId":"dialog","supported":false,"occurrences":1}]}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, "summary", writeSample(t))
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_files_scanned":2,"total_unique_features":2,"supported_features":1,"unsupported_features":1}`, out)
}

func TestSubmitAndWait(t *testing.T) {
	var fetches int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/v1/reports", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k1", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, sample, string(body))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"Processing started. Report will be available shortly.","download_url":"`+srv.URL+`/report","estimated_wait_seconds":0}`)
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&fetches, 1) < 3 {
			io.WriteString(w, reports.PlaceholderHTML)
			return
		}
		io.WriteString(w, "<!DOCTYPE html><p>done</p>")
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	out, err := run(t, "--server", srv.URL, "--api-key", "k1", "submit", "--wait", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"download_url": "`+srv.URL+`/report"`)
	assert.Contains(t, out, "<p>done</p>")
	assert.EqualValues(t, 3, atomic.LoadInt32(&fetches))
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Invalid JSON in request body"}`)
	}))
	defer srv.Close()

	_, err := run(t, "--server", srv.URL, "submit", writeSample(t))
	assert.ErrorContains(t, err, "Invalid JSON in request body")
}

func TestPollTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, reports.PlaceholderHTML)
	}))
	defer srv.Close()

	_, err := run(t, "poll", "--interval", "10ms", "--wait-timeout", "50ms", srv.URL)
	assert.ErrorContains(t, err, "not ready")
}
