package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/domain/ai"
	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/mocks"
)

const sampleReport = `{
  "scannedFiles": ["a.js", "b.css"],
  "features": [
    {"featureId": "fetch", "supported": true, "occurrences": 3},
    {"featureId": "dialog", "supported": false, "occurrences": 1}
  ]
}`

const generated = "<!DOCTYPE html><html><body>report</body></html>"

var job = reports.NewArtifactNames(
	time.Date(2025, 7, 3, 14, 5, 9, 0, time.UTC), "a1b2c3d4", "json", "resp",
).Job("reports", "us-east-1")

type fixture struct {
	svc     *Service
	store   *mocks.MemoryStore
	secrets *mocks.MockSecretStore
	model   *mocks.MockAIClient
	ledger  *mocks.MemoryLedger
	gotKey  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   mocks.NewMemoryStore(),
		secrets: &mocks.MockSecretStore{},
		model:   &mocks.MockAIClient{},
		ledger:  mocks.NewMemoryLedger(),
	}
	ctx := context.Background()
	require.NoError(t, f.store.PutObject(ctx, job.BucketName, job.JSONKey, []byte(sampleReport), reports.PutOptions{ContentType: "application/json"}))
	require.NoError(t, f.store.PutObject(ctx, job.BucketName, job.HTMLKey, []byte(reports.PlaceholderHTML), reports.PutOptions{ContentType: "text/html", CacheControl: "no-cache"}))
	require.NoError(t, f.ledger.Save(ctx, &reports.Request{ID: job.RequestID(), Status: reports.StatusPlaceholder}))

	f.svc = &Service{
		Secrets:    f.secrets,
		Store:      f.store,
		NewModel:   f.model.Factory(&f.gotKey),
		Ledger:     f.ledger,
		Errors:     f.ledger.Errors(),
		Clock:      mocks.FixedClock{T: time.Date(2025, 7, 3, 14, 6, 0, 0, time.UTC)},
		SecretID:   "llm-key",
		ScratchDir: t.TempDir(),
		Log:        zap.NewNop(),
	}
	return f
}

func (f *fixture) report(t *testing.T) string {
	t.Helper()
	obj, ok := f.store.Object(job.BucketName, job.HTMLKey)
	require.True(t, ok)
	assert.Equal(t, "text/html", obj.Opts.ContentType)
	return string(obj.Body)
}

func (f *fixture) status(t *testing.T) reports.Status {
	t.Helper()
	row, err := f.ledger.Get(context.Background(), job.RequestID())
	require.NoError(t, err)
	return row.Status
}

func TestProcess(t *testing.T) {
	t.Run("model output replaces the placeholder", func(t *testing.T) {
		f := newFixture(t)
		f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
		var prompt string
		f.model.On("Generate", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { prompt = args.String(1) }).
			Return(generated, nil)

		res, err := f.svc.Process(context.Background(), job)
		require.NoError(t, err)

		assert.Equal(t, reports.Result{Status: "completed", HTMLKey: job.HTMLKey}, res)
		assert.Equal(t, "sk-test", f.gotKey)
		assert.Equal(t, generated, f.report(t))
		assert.Equal(t, reports.StatusFinalized, f.status(t))

		assert.Contains(t, prompt, "| 2 | 1  | 1 | 2 |")
		assert.Contains(t, prompt, "© 2025 Scanora")
		assert.True(t, strings.HasSuffix(prompt, "---\n"+sampleReport))

		entries, err := os.ReadDir(f.svc.ScratchDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "scratch files are removed")
	})

	t.Run("model failure publishes the fallback page", func(t *testing.T) {
		f := newFixture(t)
		f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
		f.model.On("Generate", mock.Anything, mock.Anything).Return("", ai.ErrQuotaExceeded)

		res, err := f.svc.Process(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, reports.ResultCompleted, res.Status)
		assert.Equal(t, reports.FallbackHTML, f.report(t))
		assert.Equal(t, reports.StatusFinalizedWithErrorPage, f.status(t))

		errs, _ := f.ledger.Errors().ListByRequest(context.Background(), job.RequestID(), 0)
		require.Len(t, errs, 1)
		assert.Equal(t, reporterrors.PhaseModel, errs[0].Phase)
	})

	t.Run("non-html output is still published", func(t *testing.T) {
		f := newFixture(t)
		f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
		f.model.On("Generate", mock.Anything, mock.Anything).Return("sorry, no html", nil)

		_, err := f.svc.Process(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, "sorry, no html", f.report(t))
	})

	t.Run("loosely typed request still reaches the model", func(t *testing.T) {
		f := newFixture(t)
		loose := `{"scannedFiles":["a.js"],"features":[` +
			`{"featureId":7,"supported":1,"occurrences":3.0},` +
			`{"featureId":"grid","supported":"","versions":{"chrome":42}},` +
			`{"featureId":"dialog","supported":"yes","versions":{"safari":15.4}}]}`
		require.NoError(t, f.store.PutObject(context.Background(), job.BucketName, job.JSONKey, []byte(loose), reports.PutOptions{}))
		f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
		var prompt string
		f.model.On("Generate", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { prompt = args.String(1) }).
			Return(generated, nil)

		res, err := f.svc.Process(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, reports.ResultCompleted, res.Status)
		assert.Equal(t, generated, f.report(t))
		assert.Equal(t, reports.StatusFinalized, f.status(t))
		assert.Contains(t, prompt, "| 3 | 2  | 1 | 1 |")
	})

	t.Run("empty model reply is stored as is", func(t *testing.T) {
		f := newFixture(t)
		f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
		f.model.On("Generate", mock.Anything, mock.Anything).Return("", nil)

		_, err := f.svc.Process(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, "", f.report(t))
		assert.Equal(t, reports.StatusFinalized, f.status(t))
	})
}

func TestProcessAborts(t *testing.T) {
	cases := []struct {
		name  string
		setup func(f *fixture)
		phase reporterrors.Phase
	}{
		{
			name: "secret unavailable",
			setup: func(f *fixture) {
				f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return("", errors.New("denied"))
			},
			phase: reporterrors.PhaseSecret,
		},
		{
			name: "secret missing id",
			setup: func(f *fixture) {
				f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"other":"x"}`, nil)
			},
			phase: reporterrors.PhaseSecret,
		},
		{
			name: "staged request missing",
			setup: func(f *fixture) {
				f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
				f.store.FailGet = func(string) error { return os.ErrNotExist }
			},
			phase: reporterrors.PhaseDownload,
		},
		{
			name: "staged request has wrong shape",
			setup: func(f *fixture) {
				f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
				require.NoError(t, f.store.PutObject(context.Background(), job.BucketName, job.JSONKey,
					[]byte(`{"features":{"fetch":true}}`), reports.PutOptions{}))
			},
			phase: reporterrors.PhaseSummary,
		},
		{
			name: "model client cannot be built",
			setup: func(f *fixture) {
				f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
				f.svc.NewModel = func(string) (ai.Client, error) { return nil, errors.New("bad key") }
			},
			phase: reporterrors.PhaseModel,
		},
		{
			name: "report upload fails",
			setup: func(f *fixture) {
				f.secrets.On("GetSecretValue", mock.Anything, "llm-key").Return(`{"llm-key":"sk-test"}`, nil)
				f.model.On("Generate", mock.Anything, mock.Anything).Return(generated, nil)
				f.store.FailPut = func(string) error { return errors.New("storage down") }
			},
			phase: reporterrors.PhaseUpload,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			tc.setup(f)

			_, err := f.svc.Process(context.Background(), job)
			require.Error(t, err)

			// the placeholder stays in place
			obj, ok := f.store.Object(job.BucketName, job.HTMLKey)
			require.True(t, ok)
			assert.True(t, reports.IsPlaceholder(obj.Body))
			assert.Equal(t, reports.StatusPlaceholder, f.status(t))

			errs, _ := f.ledger.Errors().ListByRequest(context.Background(), job.RequestID(), 0)
			require.Len(t, errs, 1)
			assert.Equal(t, tc.phase, errs[0].Phase)
			if tc.phase != reporterrors.PhaseUpload {
				f.model.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProcessRejectsBadJob(t *testing.T) {
	f := newFixture(t)
	bad := job
	bad.JSONKey = "json/../etc/" + job.InputFilename

	_, err := f.svc.Process(context.Background(), bad)
	assert.ErrorIs(t, err, reports.ErrInvalidJob)
	f.secrets.AssertNotCalled(t, "GetSecretValue", mock.Anything, mock.Anything)
	_, statErr := os.Stat(filepath.Join(f.svc.ScratchDir, job.InputFilename))
	assert.True(t, os.IsNotExist(statErr))
}
