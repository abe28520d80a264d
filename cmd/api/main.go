package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/application"
	"github.com/bryanwahyu/scanora/internal/application/intake"
	"github.com/bryanwahyu/scanora/internal/bootstrap"
	"github.com/bryanwahyu/scanora/internal/config"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/infra/dispatch"
	"github.com/bryanwahyu/scanora/internal/infra/httpserver"
	"github.com/bryanwahyu/scanora/internal/middleware"
	"github.com/bryanwahyu/scanora/internal/observability"
)

func main() {
	// load config
	cfg, err := config.Load(bootstrap.ConfigPath())
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.Log.ServiceName == "scanora" {
		cfg.Log.ServiceName = "scanora-api"
	}
	logger := observability.NewProcessLogger(cfg.Log)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init adapters", zap.Error(err))
	}
	defer deps.Close()

	// pick how jobs reach the worker
	var dispatcher reports.Dispatcher
	switch cfg.Dispatch.Driver {
	case "http":
		if err := middleware.ValidateURL(cfg.Dispatch.WorkerURL); err != nil {
			logger.Fatal("worker url", zap.Error(err))
		}
		inv := dispatch.NewHTTPInvoker(cfg.Dispatch.WorkerURL, cfg.Dispatch.Timeout)
		inv.APIKey = cfg.Dispatch.APIKey
		dispatcher = inv
		logger.Info("dispatching to remote worker", zap.String("url", cfg.Dispatch.WorkerURL))
	default:
		svc, err := bootstrap.NewWorker(cfg, deps, logger)
		if err != nil {
			logger.Fatal("init worker", zap.Error(err))
		}
		queue := dispatch.NewQueue(cfg.Dispatch.QueueSize, cfg.Dispatch.Workers, svc.Handle, logger)
		queue.Start(ctx)
		defer queue.Close()
		dispatcher = queue
		logger.Info("dispatching to in-process worker", zap.Int("workers", cfg.Dispatch.Workers))
	}

	svc := &intake.Service{
		Store:      deps.Store,
		Dispatcher: dispatcher,
		Ledger:     deps.Ledger.Requests,
		Errors:     deps.Ledger.Errors,
		Clock:      application.SystemClock{},
		IDs:        application.UUIDSource{},
		Settings: intake.Settings{
			Bucket:     cfg.Storage.BucketName,
			Region:     cfg.Storage.Region,
			JSONFolder: cfg.Storage.JSONFolder,
			RespFolder: cfg.Storage.RespFolder,
			Expiration: cfg.Storage.Expiration(),
			ScratchDir: cfg.Storage.ScratchDir,
		},
		Metrics: middleware.AppMetrics{},
		Log:     logger.Named("intake"),
	}
	if cfg.Intake.StrictSchema {
		if svc.Schema, err = intake.LoadScanReportSchema(); err != nil {
			logger.Fatal("load schema", zap.Error(err))
		}
	}

	router := httpserver.NewRouter(svc, deps.Ledger.Errors, bootstrap.RouterOptions(cfg, deps, logger))
	srv := bootstrap.NewServer(cfg.Server.Port, router, 30*time.Second)
	if err := bootstrap.Serve(srv, logger); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
