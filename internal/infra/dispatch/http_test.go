package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

func TestHTTPInvoker(t *testing.T) {
	want := reports.Job{
		BucketName:    "reports",
		JSONKey:       "json/json_250101120000_0a1b2c3d.json",
		HTMLKey:       "resp/resp_250101120000_0a1b2c3d.html",
		RespFilename:  "resp_250101120000_0a1b2c3d.html",
		InputFilename: "json_250101120000_0a1b2c3d.json",
		RegionName:    "us-east-1",
	}

	t.Run("accepted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var got map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, map[string]string{
				"bucket_name":    "reports",
				"json_key":       "json/json_250101120000_0a1b2c3d.json",
				"html_key":       "resp/resp_250101120000_0a1b2c3d.html",
				"resp_filename":  "resp_250101120000_0a1b2c3d.html",
				"input_filename": "json_250101120000_0a1b2c3d.json",
				"region_name":    "us-east-1",
			}, got)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		assert.NoError(t, NewHTTPInvoker(srv.URL, time.Second).Dispatch(context.Background(), want))
	})

	t.Run("non 202 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := NewHTTPInvoker(srv.URL, time.Second).Dispatch(context.Background(), want)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "overloaded")
	})

	t.Run("unreachable worker", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		assert.Error(t, NewHTTPInvoker(url, time.Second).Dispatch(context.Background(), want))
	})
}
