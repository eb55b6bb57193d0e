// Package testsupport provides shared helpers for package tests: validated
// temp-dir configs, manifest writers, and range-aware artifact servers.
package testsupport

import (
	"path/filepath"
	"testing"

	"quarry/internal/config"
)

// NewConfig returns a validated config rooted in temp directories, bypassing
// file discovery. Transfer knobs are tightened so tests run fast.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InstallRoot = filepath.Join(base, "host")
	cfg.Paths.Manifest = filepath.Join(base, "artifacts.yaml")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Fetch.TimeoutSeconds = 10
	cfg.Fetch.ChunkSizeKiB = 8

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
