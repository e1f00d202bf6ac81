package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// StubBinary writes an executable shell script and returns its path.
func StubBinary(t testing.TB, name, script string) string {
	t.Helper()

	dir := t.TempDir()
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// PassingTool returns a stub conformance tool that reports pass! for every
// file on stdout and exits zero.
func PassingTool(t testing.TB) string {
	t.Helper()
	return StubBinary(t, "mediaconch", "#!/bin/sh\necho \"pass! $4\"\nexit 0\n")
}

// FailingTool returns a stub conformance tool that reports fail! with the
// given reason for every file.
func FailingTool(t testing.TB, reason string) string {
	t.Helper()
	return StubBinary(t, "mediaconch", "#!/bin/sh\necho \"fail! $4 "+reason+"\"\nexit 0\n")
}

// PassingChecker returns a stub bag checker that accepts every directory.
func PassingChecker(t testing.TB) string {
	t.Helper()
	return StubBinary(t, "bagcheck", "#!/bin/sh\nexit 0\n")
}

// FailingChecker returns a stub bag checker that rejects every directory with
// the given diagnostic on stderr.
func FailingChecker(t testing.TB, diagnostic string) string {
	t.Helper()
	return StubBinary(t, "bagcheck", "#!/bin/sh\necho \""+diagnostic+"\" >&2\nexit 1\n")
}
