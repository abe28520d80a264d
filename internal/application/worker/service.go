package worker

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/application"
	"github.com/bryanwahyu/scanora/internal/domain/ai"
	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/domain/secrets"
	"github.com/bryanwahyu/scanora/internal/infra/ai/prompt"
)

// Service turns a staged scan report into the final HTML report. Ledger,
// Errors and Metrics are optional.
type Service struct {
	Secrets    secrets.Store
	Store      reports.ObjectStore
	NewModel   ai.ClientFactory
	Ledger     reports.Repository
	Errors     reporterrors.Repository
	Clock      application.Clock
	SecretID   string
	ScratchDir string
	Metrics    application.Metrics
	Log        *zap.Logger
}

var reportPut = reports.PutOptions{ContentType: "text/html"}

// Process runs one job. A model failure is absorbed by publishing the
// fallback page; any other failure returns early and leaves the placeholder
// in place.
func (s *Service) Process(ctx context.Context, job reports.Job) (reports.Result, error) {
	if err := job.Validate(); err != nil {
		return reports.Result{}, err
	}
	if s.Metrics != nil {
		s.Metrics.JobStarted()
	}
	id := job.RequestID()
	log := s.Log.With(zap.String("request_id", id), zap.String("html_key", job.HTMLKey))
	log.Info("worker job received",
		zap.String("bucket", job.BucketName),
		zap.String("json_key", job.JSONKey),
		// region_name is informational only; Store is already bound to the configured region
		zap.String("region", job.RegionName),
	)

	start := time.Now()
	raw, err := s.Secrets.GetSecretValue(ctx, s.SecretID)
	if err != nil {
		return reports.Result{}, s.fail(ctx, log, id, reporterrors.PhaseSecret, fmt.Errorf("fetch secret: %w", err))
	}
	apiKey, err := secrets.ValueFor(raw, s.SecretID)
	if err != nil {
		return reports.Result{}, s.fail(ctx, log, id, reporterrors.PhaseSecret, err)
	}
	log.Info("secret fetched", zap.Duration("took", time.Since(start)))

	localJSON := filepath.Join(s.ScratchDir, path.Base(job.JSONKey))
	localHTML := filepath.Join(s.ScratchDir, job.RespFilename)
	defer s.cleanup(log, localJSON, localHTML)

	if err := s.Store.DownloadToFile(ctx, job.BucketName, job.JSONKey, localJSON); err != nil {
		return reports.Result{}, s.fail(ctx, log, id, reporterrors.PhaseDownload, err)
	}
	payload, err := os.ReadFile(localJSON)
	if err != nil {
		return reports.Result{}, s.fail(ctx, log, id, reporterrors.PhaseDownload, err)
	}

	summary, err := reports.SummarizeJSON(payload)
	if err != nil {
		return reports.Result{}, s.fail(ctx, log, id, reporterrors.PhaseSummary, err)
	}
	log.Info("summary computed",
		zap.Int("total_files_scanned", summary.TotalFilesScanned),
		zap.Int("total_unique_features", summary.TotalUniqueFeatures),
		zap.Int("supported_features", summary.SupportedFeatures),
		zap.Int("unsupported_features", summary.UnsupportedFeatures),
	)

	model, err := s.NewModel(apiKey)
	if err != nil {
		return reports.Result{}, s.fail(ctx, log, id, reporterrors.PhaseModel, fmt.Errorf("model client: %w", err))
	}

	status := reports.StatusFinalized
	start = time.Now()
	html, err := model.Generate(ctx, prompt.Compose(summary, s.Clock.Now().Year(), string(payload)))
	if err != nil {
		log.Error("model call failed", zap.Error(err))
		s.record(ctx, log, id, reporterrors.PhaseModel, err)
		html = reports.FallbackHTML
		status = reports.StatusFinalizedWithErrorPage
	} else {
		log.Info("model call finished", zap.Duration("took", time.Since(start)), zap.Int("bytes", len(html)))
		if !prompt.LooksLikeHTMLDocument(html) {
			log.Warn("model output does not start with a doctype")
		}
	}

	if err := os.WriteFile(localHTML, []byte(html), 0o600); err != nil {
		return reports.Result{}, s.fail(ctx, log, id, reporterrors.PhaseUpload, err)
	}
	if err := s.Store.UploadAndCleanup(ctx, job.BucketName, job.HTMLKey, localHTML, reportPut); err != nil {
		return reports.Result{}, s.fail(ctx, log, id, reporterrors.PhaseUpload, err)
	}
	log.Info("uploaded report", zap.String("status", string(status)))

	if s.Ledger != nil {
		if err := s.Ledger.UpdateStatus(ctx, id, status); err != nil {
			log.Warn("ledger update failed", zap.Error(err))
		}
	}
	if s.Metrics != nil {
		s.Metrics.JobFinished(status)
	}
	return reports.Result{Status: reports.ResultCompleted, HTMLKey: job.HTMLKey}, nil
}

// Handle adapts Process to the dispatch queue handler signature.
func (s *Service) Handle(ctx context.Context, job reports.Job) error {
	_, err := s.Process(ctx, job)
	return err
}

func (s *Service) fail(ctx context.Context, log *zap.Logger, id string, phase reporterrors.Phase, err error) error {
	log.Error("worker job aborted", zap.String("phase", string(phase)), zap.Error(err))
	if s.Metrics != nil {
		s.Metrics.JobFailed(phase)
	}
	s.record(ctx, log, id, phase, err)
	return fmt.Errorf("%s: %w", phase, err)
}

func (s *Service) record(ctx context.Context, log *zap.Logger, id string, phase reporterrors.Phase, err error) {
	if s.Errors == nil {
		return
	}
	if serr := s.Errors.Save(ctx, &reporterrors.ReportError{
		RequestID: id,
		Phase:     phase,
		Message:   err.Error(),
		CreatedAt: s.Clock.Now(),
	}); serr != nil {
		log.Warn("error ledger save failed", zap.Error(serr))
	}
}

func (s *Service) cleanup(log *zap.Logger, paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Debug("failed to remove local file", zap.String("path", p), zap.Error(err))
		}
	}
}
