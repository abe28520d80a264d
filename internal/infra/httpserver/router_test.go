package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/application/intake"
	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/mocks"
)

func newIntakeServer(t *testing.T, maxBody int64) (http.Handler, *mocks.MemoryStore, *mocks.MockDispatcher, *mocks.MemoryLedger) {
	t.Helper()
	store := mocks.NewMemoryStore()
	disp := &mocks.MockDispatcher{}
	ledger := mocks.NewMemoryLedger()
	svc := &intake.Service{
		Store:      store,
		Dispatcher: disp,
		Ledger:     ledger,
		Errors:     ledger.Errors(),
		Clock:      mocks.FixedClock{T: time.Date(2025, 7, 3, 14, 5, 9, 0, time.UTC)},
		IDs:        mocks.FixedIDs{Suffix: "a1b2c3d4"},
		Settings: intake.Settings{
			Bucket: "reports", Region: "us-east-1", JSONFolder: "json", RespFolder: "resp",
			Expiration: time.Hour, ScratchDir: t.TempDir(),
		},
		Log: zap.NewNop(),
	}
	h := NewRouter(svc, ledger.Errors(), Options{MaxBodyBytes: maxBody, Log: zap.NewNop()})
	return h, store, disp, ledger
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestSubmitReport(t *testing.T) {
	h, store, disp, _ := newIntakeServer(t, 1<<20)
	disp.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	rec := do(h, http.MethodPost, "/v1/reports", `{"scannedFiles":[],"features":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Processing started. Report will be available shortly.", got["message"])
	assert.EqualValues(t, 60, got["estimated_wait_seconds"])
	assert.Contains(t, got["download_url"], "resp/resp_250703140509_a1b2c3d4.html")
	assert.Equal(t, 2, store.Len())
}

func TestSubmitInvalidJSON(t *testing.T) {
	h, store, disp, _ := newIntakeServer(t, 1<<20)

	rec := do(h, http.MethodPost, "/v1/reports", `{"scannedFiles": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON in request body"}`, rec.Body.String())
	assert.Zero(t, store.Len())
	disp.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSubmitTooLarge(t *testing.T) {
	h, store, _, _ := newIntakeServer(t, 16)
	rec := do(h, http.MethodPost, "/v1/reports", `{"scannedFiles":["a","b","c"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, store.Len())
}

func TestGetReport(t *testing.T) {
	h, _, disp, ledger := newIntakeServer(t, 1<<20)
	disp.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/v1/reports", `{}`).Code)

	rec := do(h, http.MethodGet, "/v1/reports/250703140509_a1b2c3d4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var row reports.Request
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, reports.StatusPlaceholder, row.Status)
	assert.Equal(t, "resp/resp_250703140509_a1b2c3d4.html", row.HTMLKey)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/v1/reports/250703140509_ffffffff", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/v1/reports/nope", "").Code)

	require.NoError(t, ledger.Errors().Save(context.Background(), &reporterrors.ReportError{
		RequestID: "250703140509_a1b2c3d4", Phase: reporterrors.PhaseSecret, Message: "denied",
	}))
	rec = do(h, http.MethodGet, "/v1/reports/250703140509_a1b2c3d4/errors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"secret"`)
}

func TestProbes(t *testing.T) {
	h, _, _, _ := newIntakeServer(t, 0)
	assert.Equal(t, "ok", do(h, http.MethodGet, "/health", "").Body.String())
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "").Code)
	assert.Contains(t, do(h, http.MethodGet, "/metrics", "").Body.String(), "reports_submitted")
}
