package reports

import (
	"context"
	"time"
)

// PutOptions carries the HTTP metadata stored with an object.
type PutOptions struct {
	ContentType  string
	CacheControl string
}

// ObjectStore port (durable storage for request and report artifacts)
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error
	UploadFile(ctx context.Context, bucket, key, localPath string, opts PutOptions) error
	// UploadAndCleanup uploads then removes localPath; a failed removal is not an error.
	UploadAndCleanup(ctx context.Context, bucket, key, localPath string, opts PutOptions) error
	DownloadToFile(ctx context.Context, bucket, key, localPath string) error
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// Dispatcher hands a job to the report worker. A nil error only means the job
// was handed off; the caller never learns whether or when the worker ran.
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
}

// Repository port for the optional request ledger
type Repository interface {
	Save(ctx context.Context, r *Request) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Get(ctx context.Context, id string) (*Request, error)
}
