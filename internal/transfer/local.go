package transfer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gatekeeper/internal/fileutil"
)

// LocalStore implements Store over the local filesystem: buckets are
// directories under a base path, keys are relative paths. It backs tests and
// deployments where packages arrive on mounted storage.
type LocalStore struct {
	base string
}

// NewLocalStore roots a LocalStore at base.
func NewLocalStore(base string) *LocalStore {
	return &LocalStore{base: base}
}

func (l *LocalStore) Download(ctx context.Context, bucket, key, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	return fileutil.CopyFile(l.objectPath(bucket, key), localPath)
}

func (l *LocalStore) Upload(ctx context.Context, localPath, bucket, key, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := l.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return fileutil.CopyFile(localPath, target)
}

func (l *LocalStore) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(l.objectPath(bucket, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *LocalStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := filepath.Join(l.base, bucket)
	var keys []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (l *LocalStore) objectPath(bucket, key string) string {
	return filepath.Join(l.base, bucket, filepath.FromSlash(key))
}

var _ Store = (*LocalStore)(nil)
