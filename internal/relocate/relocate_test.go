package relocate_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gatekeeper/internal/relocate"
	"gatekeeper/internal/services"
	"gatekeeper/internal/transfer"
)

const testRefid = "0f1e2d3c4b5a69788796a5b4c3d2e1f0"

func writePayload(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("bits"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestContentTypeMap(t *testing.T) {
	cases := map[string]string{
		"x_a.mp3":  "audio/mpeg",
		"x_ma.wav": "audio/x-wav",
		"x_a.mp4":  "video/mp4",
		"x_ma.mkv": "video/x-matroska",
		"x_me.mov": "video/quicktime",
	}
	for filename, want := range cases {
		got, err := relocate.ContentType(filename)
		if err != nil {
			t.Fatalf("ContentType(%q) = %v", filename, err)
		}
		if got != want {
			t.Fatalf("ContentType(%q) = %q, want %q", filename, got, want)
		}
	}

	_, err := relocate.ContentType("x.txt")
	if err == nil {
		t.Fatal("expected configuration error for unmapped extension")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration kind, got %v", err)
	}
}

func TestDirectoryDestinationMove(t *testing.T) {
	ctx := context.Background()
	payload := writePayload(t, testRefid+"_a.mp3", testRefid+"_ma.wav")
	root := t.TempDir()
	dest := &relocate.DirectoryDestination{Root: root}

	if err := dest.Move(ctx, testRefid, payload); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{testRefid + "_a.mp3", testRefid + "_ma.wav"} {
		if _, err := os.Stat(filepath.Join(root, testRefid, name)); err != nil {
			t.Fatalf("missing relocated file %s: %v", name, err)
		}
	}
}

func TestDirectoryDestinationConflict(t *testing.T) {
	ctx := context.Background()
	payload := writePayload(t, testRefid+"_a.mp3")
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, testRefid), 0o755); err != nil {
		t.Fatal(err)
	}
	dest := &relocate.DirectoryDestination{Root: root}

	err := dest.Move(ctx, testRefid, payload)
	if err == nil {
		t.Fatal("expected destination conflict")
	}
	if !errors.Is(err, services.ErrDestinationConflict) {
		t.Fatalf("expected conflict kind, got %v", err)
	}
}

func TestDirectoryDestinationPurgeIdempotent(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	dest := &relocate.DirectoryDestination{Root: root}

	if err := dest.Purge(ctx, testRefid); err != nil {
		t.Fatalf("purging missing output should be a no-op, got %v", err)
	}

	if err := os.MkdirAll(filepath.Join(root, testRefid), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := dest.Purge(ctx, testRefid); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, testRefid)); !os.IsNotExist(err) {
		t.Fatal("purge should remove the refid directory")
	}
}

func TestObjectDestinationMove(t *testing.T) {
	ctx := context.Background()
	payload := writePayload(t, testRefid+"_a.mp3", testRefid+"_ma.wav")
	store := transfer.NewLocalStore(t.TempDir())
	dest := &relocate.ObjectDestination{Store: store, Bucket: "qc"}

	if err := dest.Move(ctx, testRefid, payload); err != nil {
		t.Fatal(err)
	}
	keys, err := store.List(ctx, "qc", testRefid+"/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 uploaded objects, got %v", keys)
	}
}

func TestObjectDestinationConflict(t *testing.T) {
	ctx := context.Background()
	payload := writePayload(t, testRefid+"_a.mp3")
	store := transfer.NewLocalStore(t.TempDir())
	dest := &relocate.ObjectDestination{Store: store, Bucket: "qc"}

	stale := filepath.Join(t.TempDir(), "stale")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Upload(ctx, stale, "qc", testRefid+"/"+testRefid+"_a.mp3", "audio/mpeg"); err != nil {
		t.Fatal(err)
	}

	err := dest.Move(ctx, testRefid, payload)
	if err == nil {
		t.Fatal("expected destination conflict")
	}
	if !errors.Is(err, services.ErrDestinationConflict) {
		t.Fatalf("expected conflict kind, got %v", err)
	}
}

func TestObjectDestinationUnmappedExtension(t *testing.T) {
	ctx := context.Background()
	payload := writePayload(t, "notes.txt")
	store := transfer.NewLocalStore(t.TempDir())
	dest := &relocate.ObjectDestination{Store: store, Bucket: "qc"}

	err := dest.Move(ctx, testRefid, payload)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestObjectDestinationPurge(t *testing.T) {
	ctx := context.Background()
	store := transfer.NewLocalStore(t.TempDir())
	dest := &relocate.ObjectDestination{Store: store, Bucket: "qc"}

	src := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{testRefid + "/a.mp3", testRefid + "/b.wav", "other/c.wav"} {
		if err := store.Upload(ctx, src, "qc", key, ""); err != nil {
			t.Fatal(err)
		}
	}

	if err := dest.Purge(ctx, testRefid); err != nil {
		t.Fatal(err)
	}
	keys, err := store.List(ctx, "qc", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "other/c.wav" {
		t.Fatalf("purge should leave other prefixes intact, got %v", keys)
	}
}
