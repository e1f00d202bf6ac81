package transfer

import "context"

// Store is the object-storage surface the validator depends on.
type Store interface {
	// Download fetches bucket/key into localPath, creating parent directories.
	Download(ctx context.Context, bucket, key, localPath string) error
	// Upload stores localPath at bucket/key with the given content type.
	Upload(ctx context.Context, localPath, bucket, key, contentType string) error
	// Delete removes bucket/key. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, key string) error
	// List returns every key in bucket under prefix.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}
