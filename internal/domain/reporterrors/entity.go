package reporterrors

import "time"

// Phase names the worker or intake step that failed.
type Phase string

const (
	PhaseDispatch Phase = "dispatch"
	PhaseSecret   Phase = "secret"
	PhaseDownload Phase = "download"
	PhaseSummary  Phase = "summary"
	PhaseModel    Phase = "model"
	PhaseUpload   Phase = "upload"
)

// ReportError represents a persisted failure entry for one request
type ReportError struct {
	ID          int64     `json:"id"`
	RequestID   string    `json:"request_id"`
	Phase       Phase     `json:"phase"`
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
