package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/bootstrap"
	"github.com/bryanwahyu/scanora/internal/config"
	"github.com/bryanwahyu/scanora/internal/infra/dispatch"
	"github.com/bryanwahyu/scanora/internal/infra/httpserver"
	"github.com/bryanwahyu/scanora/internal/observability"
)

func main() {
	cfg, err := config.Load(bootstrap.ConfigPath())
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.Log.ServiceName == "scanora" {
		cfg.Log.ServiceName = "scanora-worker"
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

	svc, err := bootstrap.NewWorker(cfg, deps, logger)
	if err != nil {
		logger.Fatal("init worker", zap.Error(err))
	}

	// accepted invocations run here, detached from the request
	queue := dispatch.NewQueue(cfg.Dispatch.QueueSize, cfg.Dispatch.Workers, svc.Handle, logger)
	queue.Start(ctx)
	defer queue.Close()

	router := httpserver.NewWorkerRouter(svc, queue, bootstrap.RouterOptions(cfg, deps, logger))
	srv := bootstrap.NewServer(cfg.Server.Port, router, cfg.LLM.Timeout+time.Minute)
	if err := bootstrap.Serve(srv, logger); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
