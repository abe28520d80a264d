package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/config"
	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

// Store is an object store that can also report its health.
type Store interface {
	reports.ObjectStore
	Check(ctx context.Context) error
}

// Open builds the driver named by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "minio", "":
		return NewMinio(ctx, cfg.Endpoint, cfg.Region, cfg.BucketName, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL, log)
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:          cfg.BucketName,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			Endpoint:        cfg.Endpoint,
		}, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
