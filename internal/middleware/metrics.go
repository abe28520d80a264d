package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	ReportsSubmitted   uint64
	ReportsRejected    uint64
	DispatchFailed     uint64
	JobsRunning        uint64
	JobsCompleted      uint64
	JobsFallback       uint64
	JobsFailed         uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementSubmitted counts accepted report submissions
func IncrementSubmitted() {
	atomic.AddUint64(&globalMetrics.ReportsSubmitted, 1)
}

// IncrementRejected counts submissions refused with 400
func IncrementRejected() {
	atomic.AddUint64(&globalMetrics.ReportsRejected, 1)
}

func IncrementDispatchFailed() {
	atomic.AddUint64(&globalMetrics.DispatchFailed, 1)
}

func IncrementJobsRunning() {
	atomic.AddUint64(&globalMetrics.JobsRunning, 1)
}

func DecrementJobsRunning() {
	atomic.AddUint64(&globalMetrics.JobsRunning, ^uint64(0))
}

func IncrementJobsCompleted() {
	atomic.AddUint64(&globalMetrics.JobsCompleted, 1)
}

// IncrementJobsFallback counts jobs that published the error page
func IncrementJobsFallback() {
	atomic.AddUint64(&globalMetrics.JobsFallback, 1)
}

func IncrementJobsFailed() {
	atomic.AddUint64(&globalMetrics.JobsFailed, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"reports_submitted":    atomic.LoadUint64(&globalMetrics.ReportsSubmitted),
		"reports_rejected":     atomic.LoadUint64(&globalMetrics.ReportsRejected),
		"dispatch_failed":      atomic.LoadUint64(&globalMetrics.DispatchFailed),
		"jobs_running":         atomic.LoadUint64(&globalMetrics.JobsRunning),
		"jobs_completed":       atomic.LoadUint64(&globalMetrics.JobsCompleted),
		"jobs_fallback":        atomic.LoadUint64(&globalMetrics.JobsFallback),
		"jobs_failed":          atomic.LoadUint64(&globalMetrics.JobsFailed),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}

// AppMetrics feeds service outcomes into the global counters
type AppMetrics struct{}

func (AppMetrics) DispatchFailed() { IncrementDispatchFailed() }

func (AppMetrics) JobStarted() { IncrementJobsRunning() }

func (AppMetrics) JobFinished(status reports.Status) {
	DecrementJobsRunning()
	if status == reports.StatusFinalizedWithErrorPage {
		IncrementJobsFallback()
		return
	}
	IncrementJobsCompleted()
}

func (AppMetrics) JobFailed(reporterrors.Phase) {
	DecrementJobsRunning()
	IncrementJobsFailed()
}
