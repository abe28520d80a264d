package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/bryanwahyu/scanora/internal/domain/reports"
)

// MinioStore implements reports.ObjectStore on any S3 compatible endpoint.
type MinioStore struct {
	client     *minio.Client
	bucketName string
	region     string
	log        *zap.Logger
}

// NewMinio buat koneksi MinIO dan pastikan bucket ada
func NewMinio(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool, log *zap.Logger) (*MinioStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &MinioStore{client: cli, bucketName: bucket, region: region, log: log.Named("storage.minio")}, nil
}

func putOptions(opts reports.PutOptions) minio.PutObjectOptions {
	return minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
	}
}

func (s *MinioStore) PutObject(ctx context.Context, bucket, key string, body []byte, opts reports.PutOptions) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), putOptions(opts))
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *MinioStore) UploadFile(ctx context.Context, bucket, key, localPath string, opts reports.PutOptions) error {
	if opts.ContentType == "" {
		opts.ContentType = contentTypeFor(localPath)
	}
	if _, err := s.client.FPutObject(ctx, bucket, key, localPath, putOptions(opts)); err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", localPath, bucket, key, err)
	}
	return nil
}

// UploadAndCleanup upload file lalu hapus file lokal; gagal hapus hanya di-log
func (s *MinioStore) UploadAndCleanup(ctx context.Context, bucket, key, localPath string, opts reports.PutOptions) error {
	if err := s.UploadFile(ctx, bucket, key, localPath, opts); err != nil {
		return err
	}
	removeQuietly(s.log, localPath)
	return nil
}

func (s *MinioStore) DownloadToFile(ctx context.Context, bucket, key, localPath string) error {
	if err := s.client.FGetObject(ctx, bucket, key, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *MinioStore) ReadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return b, nil
}

func (s *MinioStore) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign s3://%s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

// Check implements middleware.HealthChecker
func (s *MinioStore) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}
