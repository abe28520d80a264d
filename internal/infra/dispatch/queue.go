package dispatch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

var (
	ErrQueueFull   = errors.New("dispatch queue is full")
	ErrQueueClosed = errors.New("dispatch queue is closed")
)

// Handler runs one job. Its error is logged and otherwise dropped.
type Handler func(ctx context.Context, job reports.Job) error

// Queue is an in-process reports.Dispatcher: jobs are buffered and run by a
// fixed set of goroutines. Dispatch never blocks.
type Queue struct {
	jobs    chan reports.Job
	handler Handler
	workers int
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(size, workers int, handler Handler, log *zap.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		jobs:    make(chan reports.Job, size),
		handler: handler,
		workers: workers,
		log:     log.Named("dispatch.queue"),
	}
}

// Start launches the workers. Jobs run with ctx, which should outlive
// individual HTTP requests.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				if err := q.handler(ctx, job); err != nil {
					q.log.Error("job failed", zap.String("html_key", job.HTMLKey), zap.Error(err))
				}
			}
		}()
	}
}

func (q *Queue) Dispatch(_ context.Context, job reports.Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}
