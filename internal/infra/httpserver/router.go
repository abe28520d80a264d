package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/application/intake"
	"github.com/bryanwahyu/scanora/internal/domain/reporterrors"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
	"github.com/bryanwahyu/scanora/internal/middleware"
)

// invalidJSONMessage is the exact client-facing text for unparseable bodies.
const invalidJSONMessage = "Invalid JSON in request body"

// Options are the knobs shared by the intake and worker routers.
type Options struct {
	CORSOrigins  []string
	APIKeys      map[string]string
	RPS          float64
	Burst        int
	MaxBodyBytes int64
	Checkers     map[string]middleware.HealthChecker
	Log          *zap.Logger
}

type Router struct {
	intake  *intake.Service
	errors  reporterrors.Repository
	maxBody int64
	log     *zap.Logger
}

// NewRouter serves the intake API. errs may be nil when no ledger is configured.
func NewRouter(svc *intake.Service, errs reporterrors.Repository, opts Options) http.Handler {
	r := &Router{intake: svc, errors: errs, maxBody: opts.MaxBodyBytes, log: opts.Log}
	mux := baseMux(opts)

	mux.Route("/v1/reports", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleSubmit))
		rt.Get("/{id}", r.wrap(r.handleGet))
		rt.Get("/{id}/errors", r.wrap(r.handleErrors))
	})
	return mux
}

// baseMux installs the shared middleware stack and probe endpoints.
func baseMux(opts Options) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(opts.Log))
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	mux.Use(middleware.RateLimitMiddleware(opts.RPS, opts.Burst))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)
	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errBadRequest marks handler input errors that are not domain sentinels.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, r.log, err)
		}
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var bad errBadRequest
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, reports.ErrInvalidJSON):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalidJSONMessage})
	case errors.Is(err, reports.ErrSchemaViolation), errors.Is(err, reports.ErrInvalidJob):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &bad):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": bad.msg})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
	case errors.Is(err, reports.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/reports
// Body: ScanReport JSON. Answers 200 with the download link or 400.
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	body, err := readBody(w, req, r.maxBody)
	if err != nil {
		return err
	}
	res, err := r.intake.Submit(req.Context(), body)
	if err != nil {
		if errors.Is(err, reports.ErrInvalidJSON) || errors.Is(err, reports.ErrSchemaViolation) {
			middleware.IncrementRejected()
		}
		return err
	}
	middleware.IncrementSubmitted()
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/reports/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRequestID(id); err != nil {
		return errBadRequest{err.Error()}
	}
	row, err := r.intake.Status(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, row)
}

// GET /v1/reports/{id}/errors?limit=
func (r *Router) handleErrors(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRequestID(id); err != nil {
		return errBadRequest{err.Error()}
	}
	if r.errors == nil {
		return reports.ErrNotFound
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.errors.ListByRequest(req.Context(), id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*reporterrors.ReportError{}
	}
	return writeJSON(w, http.StatusOK, list)
}

func readBody(w http.ResponseWriter, req *http.Request, limit int64) ([]byte, error) {
	rd := io.Reader(req.Body)
	if limit > 0 {
		rd = http.MaxBytesReader(w, req.Body, limit)
	}
	return io.ReadAll(rd)
}
