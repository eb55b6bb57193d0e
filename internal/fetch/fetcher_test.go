package fetch_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quarry/internal/fetch"
	"quarry/internal/logging"
)

func newFetcher(t *testing.T, opts fetch.Options) *fetch.Fetcher {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 16
	}
	return fetch.New(opts)
}

func artifactServer(t *testing.T, content []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "artifact.bin", time.Unix(0, 0), bytes.NewReader(content))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchFullTransfer(t *testing.T) {
	content := []byte(strings.Repeat("quarry!", 100))
	server := artifactServer(t, content)
	dest := filepath.Join(t.TempDir(), "models", "artifact.bin")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var calls int
	var lastBytes, lastTotal int64
	outcome, err := newFetcher(t, fetch.Options{}).Fetch(t.Context(), server.URL, dest, 0, func(bytesSoFar, totalBytes int64, message string) {
		calls++
		if bytesSoFar < lastBytes {
			t.Fatalf("progress went backwards: %d -> %d", lastBytes, bytesSoFar)
		}
		lastBytes = bytesSoFar
		lastTotal = totalBytes
		if message == "" {
			t.Fatal("expected a progress message")
		}
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if outcome.BytesTransferred != int64(len(content)) {
		t.Fatalf("unexpected bytes transferred: %d", outcome.BytesTransferred)
	}
	if outcome.TotalBytes != int64(len(content)) {
		t.Fatalf("unexpected total: %d", outcome.TotalBytes)
	}
	if outcome.Resumed() {
		t.Fatal("fresh transfer should not report resumed")
	}
	if calls == 0 || lastBytes != int64(len(content)) || lastTotal != int64(len(content)) {
		t.Fatalf("unexpected progress trail: calls=%d last=%d/%d", calls, lastBytes, lastTotal)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("destination content mismatch")
	}
	if _, err := os.Stat(fetch.StagingPath(dest)); !os.IsNotExist(err) {
		t.Fatalf("staging file should be gone after promotion: %v", err)
	}
}

func TestFetchResumesFromStagingFile(t *testing.T) {
	content := []byte(strings.Repeat("0123456789", 50))
	server := artifactServer(t, content)
	dest := filepath.Join(t.TempDir(), "artifact.bin")

	const prefix = 123
	if err := os.WriteFile(fetch.StagingPath(dest), content[:prefix], 0o644); err != nil {
		t.Fatalf("seed staging file: %v", err)
	}

	var firstProgress int64 = -1
	outcome, err := newFetcher(t, fetch.Options{}).Fetch(t.Context(), server.URL, dest, 0, func(bytesSoFar, totalBytes int64, _ string) {
		if firstProgress < 0 {
			firstProgress = bytesSoFar
		}
		if totalBytes != int64(len(content)) {
			t.Errorf("resumed total should include prefix: got %d", totalBytes)
		}
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if !outcome.Resumed() || outcome.ResumeOffset != prefix {
		t.Fatalf("expected resume from %d, got %+v", prefix, outcome)
	}
	if outcome.BytesTransferred != int64(len(content)-prefix) {
		t.Fatalf("expected only the suffix to transfer, got %d", outcome.BytesTransferred)
	}
	if firstProgress <= prefix {
		t.Fatalf("progress should start past the resume offset, got %d", firstProgress)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("resumed file content mismatch")
	}
}

func TestFetchRestartsWhenServerIgnoresRange(t *testing.T) {
	content := []byte(strings.Repeat("fresh", 64))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Deliberately ignore the Range header.
		w.Header().Set("Content-Length", fmt.Sprint(len(content)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	if err := os.WriteFile(fetch.StagingPath(dest), []byte("stale-partial-bytes"), 0o644); err != nil {
		t.Fatalf("seed staging file: %v", err)
	}

	if _, err := newFetcher(t, fetch.Options{}).Fetch(t.Context(), server.URL, dest, 0, nil); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("expected stale partial to be discarded")
	}
}

func TestFetchServerErrorIsTransferError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	_, err := newFetcher(t, fetch.Options{}).Fetch(t.Context(), server.URL, dest, 0, nil)
	if !errors.Is(err, fetch.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatal("failed transfer must not create the final path")
	}
}

func TestFetchShortBodyLeavesStagingForResume(t *testing.T) {
	content := []byte(strings.Repeat("x", 200))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "500")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	_, err := newFetcher(t, fetch.Options{}).Fetch(t.Context(), server.URL, dest, 0, nil)
	if !errors.Is(err, fetch.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}

	info, statErr := os.Stat(fetch.StagingPath(dest))
	if statErr != nil {
		t.Fatalf("staging file should survive the failure: %v", statErr)
	}
	if info.Size() == 0 || info.Size() > 500 {
		t.Fatalf("unexpected staging size: %d", info.Size())
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatal("failed transfer must not create the final path")
	}
}

func TestFetchCancellationPreservesStaging(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(bytes.Repeat([]byte("a"), 100))
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(t.Context())
	dest := filepath.Join(t.TempDir(), "artifact.bin")

	_, err := newFetcher(t, fetch.Options{ChunkSize: 50}).Fetch(ctx, server.URL, dest, 0, func(bytesSoFar, _ int64, _ string) {
		if bytesSoFar >= 100 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, fetch.ErrTransfer) {
		t.Fatal("cancellation must not be classified as a transfer error")
	}

	info, statErr := os.Stat(fetch.StagingPath(dest))
	if statErr != nil {
		t.Fatalf("staging file should survive cancellation: %v", statErr)
	}
	if info.Size() == 0 {
		t.Fatal("expected partial bytes in the staging file")
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("slow"))
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	_, err := newFetcher(t, fetch.Options{Timeout: 100 * time.Millisecond}).Fetch(t.Context(), server.URL, dest, 0, nil)
	if !errors.Is(err, fetch.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout detail, got %v", err)
	}
}

func TestFetchUnknownTotalReportsZero(t *testing.T) {
	content := []byte(strings.Repeat("chunked", 40))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flush before writing so Go uses chunked encoding with no
		// Content-Length header.
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		_, _ = w.Write(content)
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	sawUnknown := false
	outcome, err := newFetcher(t, fetch.Options{}).Fetch(t.Context(), server.URL, dest, 0, func(_, totalBytes int64, message string) {
		if totalBytes == 0 {
			sawUnknown = true
		}
		if strings.Contains(message, "of 0") {
			t.Fatalf("unknown-total message should not show a total: %q", message)
		}
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !sawUnknown {
		t.Fatal("expected progress with unknown total")
	}
	if outcome.TotalBytes != int64(len(content)) {
		t.Fatalf("outcome should backfill the final size, got %d", outcome.TotalBytes)
	}
}

func TestFetchSizeHintUsedWhenServerSilent(t *testing.T) {
	content := []byte(strings.Repeat("hint", 25))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		_, _ = w.Write(content)
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	var sawTotal int64
	_, err := newFetcher(t, fetch.Options{}).Fetch(t.Context(), server.URL, dest, int64(len(content)), func(_, totalBytes int64, _ string) {
		sawTotal = totalBytes
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if sawTotal != int64(len(content)) {
		t.Fatalf("expected size hint as total, got %d", sawTotal)
	}
}
