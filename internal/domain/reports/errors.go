package reports

import "errors"

var (
	// ErrInvalidJSON is returned when the submitted body does not parse as JSON.
	ErrInvalidJSON = errors.New("invalid JSON in request body")
	// ErrSchemaViolation is returned by strict intake when the payload is JSON
	// but does not match the scan report shape.
	ErrSchemaViolation = errors.New("request body does not match scan report schema")
	// ErrInvalidJob is returned when a worker payload is incomplete or unsafe.
	ErrInvalidJob = errors.New("invalid worker job")
	// ErrNotFound is returned by the ledger for unknown request ids.
	ErrNotFound = errors.New("report request not found")
)
