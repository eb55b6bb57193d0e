package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quarry/internal/catalog"
	"quarry/internal/testsupport"
)

type cliTestEnv struct {
	installRoot  string
	manifestPath string
	configPath   string
	maxAttempts  int
}

func setupCLITestEnv(t *testing.T, entries []catalog.Artifact) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		installRoot:  filepath.Join(base, "comfyui"),
		manifestPath: filepath.Join(base, "artifacts.yaml"),
		configPath:   filepath.Join(base, "config.toml"),
		maxAttempts:  3,
	}
	writeTestConfig(t, env)
	if entries != nil {
		testsupport.WriteManifest(t, env.manifestPath, entries)
	}
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
install_root = %q
manifest = %q
log_dir = %q

[fetch]
max_attempts = %d
timeout_seconds = 10
chunk_size_kib = 8
backoff_base_seconds = 1
`,
		env.installRoot,
		env.manifestPath,
		filepath.Join(filepath.Dir(env.configPath), "logs"),
		env.maxAttempts,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if env != nil {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
