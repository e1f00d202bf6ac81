package testsupport

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// BuildBag creates a minimal bag directory named refid under parent with the
// given payload filenames, and returns the bag path. Payload contents derive
// from the filename so checksums stay deterministic.
func BuildBag(t testing.TB, parent, refid string, payload ...string) string {
	t.Helper()

	bagDir := filepath.Join(parent, refid)
	WriteFile(t, filepath.Join(bagDir, "bagit.txt"),
		"BagIt-Version: 0.97\nTag-File-Character-Encoding: UTF-8\n")
	WriteFile(t, filepath.Join(bagDir, "bag-info.txt"),
		"External-Identifier: "+refid+"\n")

	var manifest strings.Builder
	for _, name := range payload {
		contents := "payload for " + name
		WriteFile(t, filepath.Join(bagDir, "data", name), contents)
		sum := sha256.Sum256([]byte(contents))
		fmt.Fprintf(&manifest, "%s  data/%s\n", hex.EncodeToString(sum[:]), name)
	}
	WriteFile(t, filepath.Join(bagDir, "manifest-sha256.txt"), manifest.String())
	return bagDir
}

// TarBag archives bagDir into archivePath so the bag directory is the
// archive's single top-level entry. When gzipped is true the stream is
// gzip-compressed.
func TarBag(t testing.TB, bagDir, archivePath string, gzipped bool) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", archivePath, err)
	}
	out, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create %s: %v", archivePath, err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			t.Fatalf("close %s: %v", archivePath, err)
		}
	}()

	var sink io.Writer = out
	var gz *gzip.Writer
	if gzipped {
		gz = gzip.NewWriter(out)
		sink = gz
	}
	tw := tar.NewWriter(sink)

	parent := filepath.Dir(bagDir)
	walkErr := filepath.WalkDir(bagDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if entry.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
	if walkErr != nil {
		t.Fatalf("tar %s: %v", bagDir, walkErr)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("finish tar: %v", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			t.Fatalf("finish gzip: %v", err)
		}
	}
}

// SeedSourceObject builds a bag with the given payload, archives it, and
// places the archive in a local store layout at base/bucket/key. It returns
// the refid derived from key.
func SeedSourceObject(t testing.TB, base, bucket, key string, payload ...string) string {
	t.Helper()

	refid := key
	if idx := strings.IndexByte(refid, '.'); idx >= 0 {
		refid = refid[:idx]
	}
	scratch := t.TempDir()
	bagDir := BuildBag(t, scratch, refid, payload...)
	TarBag(t, bagDir, filepath.Join(base, bucket, key), strings.HasSuffix(key, ".gz"))
	return refid
}
