// Package media abstracts the object-storage backend that holds alumno
// profile photos. Handlers depend on the Store interface; the concrete
// backend is MinIO (any S3-compatible endpoint works).
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store uploads a named object and returns its public URL.
type Store interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
}

// ObjectName derives the storage key for a profile photo:
// "<alumnoID>_<unixSeconds>_<originalFilename>". The timestamp keeps
// re-uploads from overwriting each other; Base strips any path the
// client smuggled into the filename.
func ObjectName(alumnoID int64, filename string, now time.Time) string {
	return fmt.Sprintf("%d_%d_%s", alumnoID, now.Unix(), filepath.Base(filename))
}

// MinioStore is the S3-compatible implementation of Store.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore builds the client from config. minio.New does not dial —
// the first network hit is EnsureBucket or the first upload.
func NewMinioStore(cfg config.Media) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("media.NewMinioStore: %w", err)
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// EnsureBucket creates the photo bucket if it does not exist yet.
// Idempotent, called once at startup.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("media.EnsureBucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("media.EnsureBucket: %w", err)
	}
	return nil
}

// Upload streams the object into the bucket and returns the URL under
// which it is publicly reachable.
func (s *MinioStore) Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("media.Upload: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, name), nil
}
