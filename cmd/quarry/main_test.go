package main

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"quarry/internal/catalog"
	"quarry/internal/testsupport"
)

func testEntry(name, kind, url string, content []byte) catalog.Artifact {
	sum := sha256.Sum256(content)
	return catalog.Artifact{
		Name:         name,
		Kind:         kind,
		SourceURL:    url,
		Filename:     name + ".bin",
		SizeBytes:    int64(len(content)),
		Checksum:     hex.EncodeToString(sum[:]),
		ChecksumType: "sha256",
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("init over an existing file must fail without --overwrite")
	}
	if _, _, err := runCLI(t, env, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestListShowsManifestEntries(t *testing.T) {
	env := setupCLITestEnv(t, []catalog.Artifact{
		testEntry("wav2vec", "speech-model", "http://example.test/wav2vec.safetensors", []byte("a")),
		testEntry("vae", "vae", "http://example.test/vae.pth", []byte("b")),
	})

	out, _, err := runCLI(t, env, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "wav2vec")
	requireContains(t, out, "speech-model")
	requireContains(t, out, "vae")
}

func TestShowArtifactDetail(t *testing.T) {
	env := setupCLITestEnv(t, []catalog.Artifact{
		testEntry("wav2vec", "speech-model", "http://example.test/wav2vec.safetensors", []byte("a")),
	})

	out, _, err := runCLI(t, env, "show", "wav2vec")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "http://example.test/wav2vec.safetensors")
	requireContains(t, out, "absent")

	if _, _, err := runCLI(t, env, "show", "ghost"); err == nil {
		t.Fatal("show of an unknown artifact must fail")
	}
}

func TestStatusWithEmptyManifest(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Manifest declares no artifacts")
}

func TestFetchInstallsArtifact(t *testing.T) {
	content := []byte("model weights payload")
	server := testsupport.NewArtifactServer(t, content)
	env := setupCLITestEnv(t, []catalog.Artifact{
		testEntry("wav2vec", "speech-model", server.URL, content),
	})

	out, _, err := runCLI(t, env, "fetch", "wav2vec")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "installed at")

	dest := filepath.Join(env.installRoot, "models", "speech", "wav2vec.bin")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected installed artifact at %s: %v", dest, err)
	}

	requests := server.Requests()
	if _, _, err := runCLI(t, env, "fetch", "wav2vec"); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if server.Requests() != requests {
		t.Fatal("second fetch of an installed artifact must not hit the network")
	}

	out, _, err = runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "installed")
	requireContains(t, out, "1 of 1 installed")
}

func TestFetchAllReportsFailures(t *testing.T) {
	content := []byte("good payload")
	good := testsupport.NewArtifactServer(t, content)
	bad := testsupport.NewFlakyServer(t, 1<<30, nil)

	env := setupCLITestEnv(t, []catalog.Artifact{
		testEntry("good", "vae", good.URL, content),
		testEntry("bad", "lora", bad.URL, []byte("never")),
	})
	env.maxAttempts = 1
	writeTestConfig(t, env)

	out, _, err := runCLI(t, env, "fetch")
	if err == nil {
		t.Fatal("expected batch failure error")
	}
	requireContains(t, out, "Fetched 1, skipped 0, failed 1")
	requireContains(t, out, "bad:")
}

func TestAuditReportsCorruption(t *testing.T) {
	content := []byte("authentic bytes")
	env := setupCLITestEnv(t, []catalog.Artifact{
		testEntry("vae", "vae", "http://example.test/vae.pth", content),
	})

	dest := filepath.Join(env.installRoot, "models", "vae", "vae.bin")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(dest, []byte("tampered"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, _, err := runCLI(t, env, "audit")
	if err == nil {
		t.Fatal("audit must fail when an artifact is corrupted")
	}
	requireContains(t, out, "FAILED")
}

func TestCleanRemovesPartials(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	partial := filepath.Join(env.installRoot, "models", "vae", "vae.pth.part")
	if err := os.MkdirAll(filepath.Dir(partial), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(partial, []byte("partial"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, _, err := runCLI(t, env, "clean", "--dry-run")
	if err != nil {
		t.Fatalf("clean --dry-run: %v", err)
	}
	requireContains(t, out, partial)
	if _, err := os.Stat(partial); err != nil {
		t.Fatal("dry run must not remove anything")
	}

	out, _, err = runCLI(t, env, "clean")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed")
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatal("expected partial to be removed")
	}
}

func TestPreflightHealthyEnvironment(t *testing.T) {
	env := setupCLITestEnv(t, []catalog.Artifact{
		testEntry("vae", "vae", "http://example.test/vae.pth", []byte("x")),
	})

	out, _, err := runCLI(t, env, "preflight")
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	requireContains(t, out, "[OK]")
}
