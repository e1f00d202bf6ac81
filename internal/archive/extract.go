// Package archive unpacks package archives into the working directory.
//
// Archives are tar streams, optionally gzip-compressed; the compression is
// sniffed from the file's magic bytes rather than its name. Entries that
// would escape the destination directory abort extraction.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gatekeeper/internal/services"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Extract unpacks the tar archive at archivePath into destDir and removes the
// archive on success.
func Extract(archivePath, destDir string) error {
	if err := extract(archivePath, destDir); err != nil {
		return services.Wrap(services.ErrExtraction, "extracting", "unpack archive",
			"error extracting TAR file", err)
	}
	if err := os.Remove(archivePath); err != nil {
		return services.Wrap(services.ErrExtraction, "extracting", "remove archive",
			"cannot remove extracted archive", err)
	}
	return nil
}

func extract(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()

	var reader io.Reader = file
	compressed, err := isGzip(file)
	if err != nil {
		return err
	}
	if compressed {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return err
		}
		defer gz.Close()
		reader = gz
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := secureJoin(destDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeEntry(target, tr, header.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Symlinks and devices have no place in a bag; skip them.
		}
	}
}

func writeEntry(target string, reader io.Reader, mode os.FileMode) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func secureJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean(name))
	base := filepath.Clean(destDir)
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return target, nil
}

func isGzip(file *os.File) (bool, error) {
	magic := make([]byte, 2)
	n, err := io.ReadFull(file, magic)
	if err != nil && n < 2 {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			_, seekErr := file.Seek(0, io.SeekStart)
			return false, seekErr
		}
		return false, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	return magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1], nil
}
