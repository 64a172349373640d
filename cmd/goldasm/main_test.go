package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// chriskillpack-bbcdisasm's cmd/bbcdisasm package carries no tests of its
// own CLI wiring; following that precedent, only the pure-logic helper
// (not the cli.App plumbing) is exercised here. Assertions use testify,
// the teacher's own test library (hejops-gone/cpu/cpu_test.go).
func TestWriteFileRetryingOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, writeFileRetrying(path, []byte("fresh")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "fresh", string(got))
}

func TestWriteFileRetryingCreatesNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.symbols")

	require.NoError(t, writeFileRetrying(path, []byte("data")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "data", string(got))
}
