package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/application/worker"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/infra/dispatch"
)

type WorkerRouter struct {
	worker  *worker.Service
	queue   reports.Dispatcher
	maxBody int64
	log     *zap.Logger
}

// NewWorkerRouter serves the worker invocation endpoint. Asynchronous
// invocations are handed to queue; ?mode=sync runs on the request goroutine.
func NewWorkerRouter(svc *worker.Service, queue reports.Dispatcher, opts Options) http.Handler {
	r := &WorkerRouter{worker: svc, queue: queue, maxBody: opts.MaxBodyBytes, log: opts.Log}
	mux := baseMux(opts)
	mux.Post("/v1/invocations", r.wrap(r.handleInvoke))
	return mux
}

func (r *WorkerRouter) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, r.log, err)
		}
	}
}

// POST /v1/invocations[?mode=sync]
// Body: worker job payload
func (r *WorkerRouter) handleInvoke(w http.ResponseWriter, req *http.Request) error {
	body, err := readBody(w, req, r.maxBody)
	if err != nil {
		return err
	}
	var job reports.Job
	if err := json.Unmarshal(body, &job); err != nil {
		return reports.ErrInvalidJSON
	}
	if err := job.Validate(); err != nil {
		return err
	}

	if req.URL.Query().Get("mode") == "sync" {
		res, err := r.worker.Process(req.Context(), job)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, res)
	}

	if err := r.queue.Dispatch(req.Context(), job); err != nil {
		if errors.Is(err, dispatch.ErrQueueFull) || errors.Is(err, dispatch.ErrQueueClosed) {
			r.log.Warn("invocation rejected", zap.String("html_key", job.HTMLKey), zap.Error(err))
			return writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		}
		return err
	}
	return writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
