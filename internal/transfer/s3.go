package transfer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"gatekeeper/internal/config"
)

// S3Store implements Store against an S3-compatible object store.
type S3Store struct {
	client *minio.Client
}

// NewS3Store builds an S3 client from storage configuration.
func NewS3Store(cfg config.Storage) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Region: cfg.Region,
		Secure: cfg.UseSSL,
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("build s3 client: %w", err)
	}
	return &S3Store{client: client}, nil
}

func (s *S3Store) Download(ctx context.Context, bucket, key, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	if err := s.client.FGetObject(ctx, bucket, key, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3Store) Upload(ctx context.Context, localPath, bucket, key, contentType string) error {
	_, err := s.client.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s to %s/%s: %w", localPath, bucket, key, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	objects := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

var _ Store = (*S3Store)(nil)
