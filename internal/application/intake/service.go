package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/application"
	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

// Settings are the deployment values the intake needs per request.
type Settings struct {
	Bucket     string
	Region     string
	JSONFolder string
	RespFolder string
	Expiration time.Duration
	ScratchDir string
}

// Service accepts scan reports, stages them, and hands them to the worker.
// Ledger, Errors, Schema and Metrics are optional.
type Service struct {
	Store      reports.ObjectStore
	Dispatcher reports.Dispatcher
	Ledger     reports.Repository
	Errors     reporterrors.Repository
	Schema     *gojsonschema.Schema
	Clock      application.Clock
	IDs        application.IDSource
	Settings   Settings
	Metrics    application.Metrics
	Log        *zap.Logger
}

// SubmitResult is returned to the client right away.
type SubmitResult struct {
	Message              string `json:"message"`
	DownloadURL          string `json:"download_url"`
	EstimatedWaitSeconds int    `json:"estimated_wait_seconds"`
}

const submitMessage = "Processing started. Report will be available shortly."

var (
	jsonPut        = reports.PutOptions{ContentType: "application/json"}
	placeholderPut = reports.PutOptions{ContentType: "text/html", CacheControl: "no-cache"}
)

// Submit stages body, publishes the placeholder, and dispatches the worker.
// It returns reports.ErrInvalidJSON before touching storage when body does
// not parse.
func (s *Service) Submit(ctx context.Context, body []byte) (SubmitResult, error) {
	if !json.Valid(body) {
		return SubmitResult{}, reports.ErrInvalidJSON
	}
	if s.Schema != nil {
		if err := s.validate(body); err != nil {
			return SubmitResult{}, err
		}
	}

	var staged bytes.Buffer
	if err := json.Indent(&staged, bytes.TrimSpace(body), "", "  "); err != nil {
		return SubmitResult{}, reports.ErrInvalidJSON
	}

	names := reports.NewArtifactNames(s.Clock.Now(), s.IDs.NewSuffix(), s.Settings.JSONFolder, s.Settings.RespFolder)
	log := s.Log.With(zap.String("request_id", names.ID))
	log.Info("received scan report", zap.Int("bytes", len(body)))

	localInput := filepath.Join(s.Settings.ScratchDir, names.InputFilename)
	if err := os.WriteFile(localInput, staged.Bytes(), 0o600); err != nil {
		return SubmitResult{}, fmt.Errorf("stage request: %w", err)
	}
	defer func() {
		if err := os.Remove(localInput); err != nil && !os.IsNotExist(err) {
			log.Debug("failed to remove staged request", zap.String("path", localInput), zap.Error(err))
		}
	}()

	if err := s.Store.UploadAndCleanup(ctx, s.Settings.Bucket, names.JSONKey, localInput, jsonPut); err != nil {
		return SubmitResult{}, fmt.Errorf("upload request: %w", err)
	}

	if err := s.Store.PutObject(ctx, s.Settings.Bucket, names.HTMLKey, []byte(reports.PlaceholderHTML), placeholderPut); err != nil {
		return SubmitResult{}, fmt.Errorf("upload placeholder: %w", err)
	}
	log.Info("uploaded placeholder report", zap.String("bucket", s.Settings.Bucket), zap.String("key", names.HTMLKey))

	url, err := s.Store.PresignGet(ctx, s.Settings.Bucket, names.HTMLKey, s.Settings.Expiration)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("presign report: %w", err)
	}

	if s.Ledger != nil {
		now := s.Clock.Now()
		if err := s.Ledger.Save(ctx, &reports.Request{
			ID:        names.ID,
			JSONKey:   names.JSONKey,
			HTMLKey:   names.HTMLKey,
			Status:    reports.StatusPlaceholder,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			log.Warn("ledger save failed", zap.Error(err))
		}
	}

	// Hand-off only. Failure is not retried and does not change the answer:
	// the client keeps polling the placeholder.
	if err := s.Dispatcher.Dispatch(ctx, names.Job(s.Settings.Bucket, s.Settings.Region)); err != nil {
		log.Error("worker dispatch failed", zap.Error(err))
		if s.Metrics != nil {
			s.Metrics.DispatchFailed()
		}
		s.recordError(ctx, names.ID, err)
	}

	return SubmitResult{
		Message:              submitMessage,
		DownloadURL:          url,
		EstimatedWaitSeconds: reports.EstimatedWaitSeconds,
	}, nil
}

// Status returns the ledger row for a request id.
func (s *Service) Status(ctx context.Context, id string) (*reports.Request, error) {
	if s.Ledger == nil {
		return nil, reports.ErrNotFound
	}
	return s.Ledger.Get(ctx, id)
}

func (s *Service) validate(body []byte) error {
	res, err := s.Schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return reports.ErrInvalidJSON
	}
	if !res.Valid() {
		var problems []string
		for _, desc := range res.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("%w: %v", reports.ErrSchemaViolation, problems)
	}
	return nil
}

func (s *Service) recordError(ctx context.Context, id string, err error) {
	if s.Errors == nil {
		return
	}
	if serr := s.Errors.Save(ctx, &reporterrors.ReportError{
		RequestID: id,
		Phase:     reporterrors.PhaseDispatch,
		Message:   err.Error(),
		CreatedAt: s.Clock.Now(),
	}); serr != nil {
		s.Log.Warn("error ledger save failed", zap.Error(serr))
	}
}
