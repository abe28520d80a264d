package reporterrors

import (
	"context"
)

// Repository defines persistence for report errors
type Repository interface {
	Save(ctx context.Context, e *ReportError) error
	ListByRequest(ctx context.Context, requestID string, limit int) ([]*ReportError, error)
}
