package bag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gatekeeper/internal/services"
)

func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bagit.py")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckPassesSilently(t *testing.T) {
	cli := NewCLI(WithCommand(writeStub(t, "exit 0"), "--validate"))
	if err := cli.Check(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("expected clean check, got %v", err)
	}
}

func TestCheckStructuralFailureCarriesDiagnostics(t *testing.T) {
	script := `echo "data/x_ma.wav sha256 validation failed: expected 0abc found 0def" >&2; exit 1`
	cli := NewCLI(WithCommand(writeStub(t, script), "--validate"))

	err := cli.Check(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected structural conformance error")
	}
	if !errors.Is(err, services.ErrStructural) {
		t.Fatalf("expected structural kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "sha256 validation failed") {
		t.Fatalf("expected checker diagnostics in error, got %v", err)
	}
}

func TestCheckMissingCommandIsTransient(t *testing.T) {
	cli := NewCLI(WithCommand(filepath.Join(t.TempDir(), "absent"), "--validate"))
	err := cli.Check(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing checker")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient kind, got %v", err)
	}
}

func TestCheckRequiresPath(t *testing.T) {
	cli := NewCLI()
	if err := cli.Check(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty bag path")
	}
}
