// Package bootstrap wires config into the services shared by cmd/api and
// cmd/worker.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/application"
	"github.com/bryanwahyu/scanora/internal/application/worker"
	"github.com/bryanwahyu/scanora/internal/config"
	"github.com/bryanwahyu/scanora/internal/infra/ai/provider"
	"github.com/bryanwahyu/scanora/internal/infra/db"
	"github.com/bryanwahyu/scanora/internal/infra/httpserver"
	"github.com/bryanwahyu/scanora/internal/infra/secrets"
	"github.com/bryanwahyu/scanora/internal/infra/storage"
	"github.com/bryanwahyu/scanora/internal/middleware"
)

// ConfigPath returns config.yaml unless CONFIG_PATH overrides it.
func ConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

// Deps are the adapters both services need.
type Deps struct {
	Store  storage.Store
	Ledger *db.Ledger
}

// Open connects storage and the optional ledger.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Deps, error) {
	if err := os.MkdirAll(cfg.Storage.ScratchDir, 0o700); err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("storage init: %w", err)
	}
	ledger, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("adapters ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("bucket", cfg.Storage.BucketName),
		zap.String("database", cfg.Database.Driver),
	)
	return &Deps{Store: store, Ledger: ledger}, nil
}

func (d *Deps) Close() error { return d.Ledger.Close() }

// Checkers are the /healthz probes for these adapters.
func (d *Deps) Checkers() map[string]middleware.HealthChecker {
	return map[string]middleware.HealthChecker{
		"storage": d.Store,
		"ledger":  d.Ledger,
	}
}

// NewWorker builds the report worker service.
func NewWorker(cfg *config.Config, d *Deps, log *zap.Logger) (*worker.Service, error) {
	sec, err := secrets.Open(cfg.Secrets, cfg.Storage.BucketName, d.Store, log)
	if err != nil {
		return nil, err
	}
	factory, err := provider.NewFactory(cfg.LLM)
	if err != nil {
		return nil, err
	}
	if cfg.Secrets.LLMSecretID == "" {
		return nil, fmt.Errorf("secrets.llmSecretID (BR_API_KEY) is required by the worker")
	}
	return &worker.Service{
		Secrets:    sec,
		Store:      d.Store,
		NewModel:   factory,
		Ledger:     d.Ledger.Requests,
		Errors:     d.Ledger.Errors,
		Clock:      application.SystemClock{},
		SecretID:   cfg.Secrets.LLMSecretID,
		ScratchDir: cfg.Storage.ScratchDir,
		Metrics:    middleware.AppMetrics{},
		Log:        log.Named("worker"),
	}, nil
}

// RouterOptions maps config onto the router knobs.
func RouterOptions(cfg *config.Config, d *Deps, log *zap.Logger) httpserver.Options {
	return httpserver.Options{
		CORSOrigins:  cfg.Server.CORSOrigins,
		APIKeys:      cfg.Auth.APIKeys,
		RPS:          cfg.RateLimit.RPS,
		Burst:        cfg.RateLimit.Burst,
		MaxBodyBytes: cfg.Intake.MaxBodyBytes,
		Checkers:     d.Checkers(),
		Log:          log.Named("http"),
	}
}

// Serve runs srv until SIGINT/SIGTERM, then shuts it down gracefully.
func Serve(srv *http.Server, log *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case err := <-errc:
		return err
	case <-stop:
	}
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// NewServer applies the timeouts shared by both services. The write
// timeout covers synchronous worker invocations, which wait for the model.
func NewServer(port int, h http.Handler, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
}
