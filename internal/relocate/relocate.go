package relocate

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"gatekeeper/internal/fileutil"
	"gatekeeper/internal/services"
	"gatekeeper/internal/transfer"
)

// Destination receives validated payloads and can purge partial output after
// a failed run.
type Destination interface {
	// Move relocates every file in payloadDir under the refid key. A
	// pre-existing destination for the same refid is a conflict.
	Move(ctx context.Context, refid, payloadDir string) error
	// Purge removes everything stored under the refid prefix. Purging a
	// refid with no output is a no-op.
	Purge(ctx context.Context, refid string) error
}

// DirectoryDestination copies payloads into a local directory tree.
type DirectoryDestination struct {
	Root string
}

func (d *DirectoryDestination) Move(ctx context.Context, refid, payloadDir string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTransient, "relocating", "copy payload", "cancelled", err)
	}
	target := filepath.Join(d.Root, refid)
	if err := fileutil.CopyTree(payloadDir, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return services.Wrap(services.ErrDestinationConflict, "relocating", "copy payload",
				"a package with refid "+refid+" is already waiting to be QCed", nil)
		}
		return services.Wrap(services.ErrTransient, "relocating", "copy payload",
			"cannot copy payload to destination", err)
	}
	return nil
}

func (d *DirectoryDestination) Purge(ctx context.Context, refid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(d.Root, refid))
}

// ObjectDestination uploads payload files to an object-store bucket.
type ObjectDestination struct {
	Store  transfer.Store
	Bucket string
}

func (o *ObjectDestination) Move(ctx context.Context, refid, payloadDir string) error {
	existing, err := o.Store.List(ctx, o.Bucket, refid+"/")
	if err != nil {
		return services.Wrap(services.ErrTransient, "relocating", "probe destination",
			"cannot list destination prefix", err)
	}
	if len(existing) > 0 {
		return services.Wrap(services.ErrDestinationConflict, "relocating", "probe destination",
			"a package with refid "+refid+" is already waiting to be QCed", nil)
	}

	entries, err := os.ReadDir(payloadDir)
	if err != nil {
		return services.Wrap(services.ErrTransient, "relocating", "list payload",
			"cannot read payload directory", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contentType, err := ContentType(entry.Name())
		if err != nil {
			return err
		}
		local := filepath.Join(payloadDir, entry.Name())
		key := refid + "/" + entry.Name()
		if err := o.Store.Upload(ctx, local, o.Bucket, key, contentType); err != nil {
			return services.Wrap(services.ErrTransient, "relocating", "upload payload",
				"cannot upload "+entry.Name(), err)
		}
	}
	return nil
}

func (o *ObjectDestination) Purge(ctx context.Context, refid string) error {
	keys, err := o.Store.List(ctx, o.Bucket, refid+"/")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := o.Store.Delete(ctx, o.Bucket, key); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ Destination = (*DirectoryDestination)(nil)
	_ Destination = (*ObjectDestination)(nil)
)
