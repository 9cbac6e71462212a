package exports

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
)

// S3Archive keeps a copy of every generated export in object storage.
// Uploads are best effort: callers treat failures as non-fatal.
type S3Archive struct {
	client *minio.Client
	bucket string

	ensureOnce sync.Once
	ensureErr  error
}

func NewS3Archive(client *minio.Client, bucket string) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

func (a *S3Archive) EnsureBucket(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if a.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	a.ensureOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.ensureErr = err
			return
		}
		if exists {
			return
		}
		a.ensureErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	})

	if a.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", a.bucket, a.ensureErr)
	}

	return nil
}

func (a *S3Archive) PutExport(ctx context.Context, key string, data []byte, contentType string) error {
	if a.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if key == "" || len(data) == 0 {
		return ErrValidation
	}

	if err := a.EnsureBucket(ctx); err != nil {
		return err
	}

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put export to s3: %w", err)
	}

	return nil
}
