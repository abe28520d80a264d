package reports

import (
	"encoding/json"
	"time"
)

// ScanReport is the client supplied feature-compatibility payload.
type ScanReport struct {
	ScannedFiles []json.RawMessage `json:"scannedFiles"`
	Features     []Feature         `json:"features"`
}

// Feature is one detected platform feature. Versions maps a browser name to a
// version token ("42", "≤79", "Not tracked", "Unsupported").
type Feature struct {
	FeatureID   string            `json:"featureId"`
	Supported   bool              `json:"supported"`
	Occurrences int               `json:"occurrences"`
	Versions    map[string]string `json:"versions,omitempty"`
}

// Status of the report artifact behind a download link
type Status string

const (
	StatusPlaceholder            Status = "placeholder"
	StatusFinalized              Status = "finalized"
	StatusFinalizedWithErrorPage Status = "finalized_with_error_page"
)

// Request is the ledger row kept for every accepted submission.
type Request struct {
	ID        string    `json:"id"`
	JSONKey   string    `json:"json_key"`
	HTMLKey   string    `json:"html_key"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Job is the payload handed from the intake service to the report worker.
type Job struct {
	BucketName    string `json:"bucket_name"`
	JSONKey       string `json:"json_key"`
	HTMLKey       string `json:"html_key"`
	RespFilename  string `json:"resp_filename"`
	InputFilename string `json:"input_filename"`
	RegionName    string `json:"region_name"`
}

// Result is what the worker returns once a job has run. Nothing consumes it
// on the asynchronous path; it is kept for logs and synchronous invocations.
type Result struct {
	Status  string `json:"status"`
	HTMLKey string `json:"html_s3_key"`
}

const ResultCompleted = "completed"
