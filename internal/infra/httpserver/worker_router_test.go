package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/application/worker"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/infra/dispatch"
	"github.com/bryanwahyu/scanora/internal/mocks"
)

var testJob = reports.NewArtifactNames(
	time.Date(2025, 7, 3, 14, 5, 9, 0, time.UTC), "a1b2c3d4", "json", "resp",
).Job("reports", "us-east-1")

func jobBody(t *testing.T, j reports.Job) string {
	t.Helper()
	b, err := json.Marshal(j)
	require.NoError(t, err)
	return string(b)
}

func newWorkerServer(t *testing.T, queue reports.Dispatcher) (http.Handler, *mocks.MemoryStore, *mocks.MockAIClient) {
	t.Helper()
	store := mocks.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.PutObject(ctx, "reports", testJob.JSONKey, []byte(`{"scannedFiles":["a"],"features":[]}`), reports.PutOptions{}))
	require.NoError(t, store.PutObject(ctx, "reports", testJob.HTMLKey, []byte(reports.PlaceholderHTML), reports.PutOptions{}))

	sec := &mocks.MockSecretStore{}
	sec.On("GetSecretValue", mock.Anything, "llm").Return(`{"llm":"k"}`, nil)
	model := &mocks.MockAIClient{}

	svc := &worker.Service{
		Secrets:    sec,
		Store:      store,
		NewModel:   model.Factory(nil),
		Clock:      mocks.FixedClock{T: time.Date(2025, 7, 3, 14, 6, 0, 0, time.UTC)},
		SecretID:   "llm",
		ScratchDir: t.TempDir(),
		Log:        zap.NewNop(),
	}
	return NewWorkerRouter(svc, queue, Options{MaxBodyBytes: 1 << 16, Log: zap.NewNop()}), store, model
}

func TestInvokeAsync(t *testing.T) {
	queue := &mocks.MockDispatcher{}
	queue.On("Dispatch", mock.Anything, testJob).Return(nil).Once()
	h, _, model := newWorkerServer(t, queue)

	rec := do(h, http.MethodPost, "/v1/invocations", jobBody(t, testJob))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	queue.AssertExpectations(t)
	model.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestInvokeQueueFull(t *testing.T) {
	queue := &mocks.MockDispatcher{}
	queue.On("Dispatch", mock.Anything, mock.Anything).Return(dispatch.ErrQueueFull)
	h, _, _ := newWorkerServer(t, queue)

	rec := do(h, http.MethodPost, "/v1/invocations", jobBody(t, testJob))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInvokeSync(t *testing.T) {
	h, store, model := newWorkerServer(t, &mocks.MockDispatcher{})
	model.On("Generate", mock.Anything, mock.Anything).Return("<!DOCTYPE html><html></html>", nil)

	rec := do(h, http.MethodPost, "/v1/invocations?mode=sync", jobBody(t, testJob))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"completed","html_s3_key":"resp/resp_250703140509_a1b2c3d4.html"}`, rec.Body.String())

	obj, ok := store.Object("reports", testJob.HTMLKey)
	require.True(t, ok)
	assert.Equal(t, "<!DOCTYPE html><html></html>", string(obj.Body))
}

func TestInvokeRejectsBadPayload(t *testing.T) {
	queue := &mocks.MockDispatcher{}
	h, _, _ := newWorkerServer(t, queue)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/v1/invocations", "{").Code)

	bad := testJob
	bad.HTMLKey = "../../etc/" + bad.RespFilename
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/v1/invocations", jobBody(t, bad)).Code)
	queue.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}
