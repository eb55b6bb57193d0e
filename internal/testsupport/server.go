package testsupport

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// ArtifactServer serves content with full byte-range support and counts
// requests, so tests can assert on resume behavior and idempotence.
type ArtifactServer struct {
	*httptest.Server
	requests atomic.Int64
}

// Requests reports how many requests the server has handled.
func (s *ArtifactServer) Requests() int {
	return int(s.requests.Load())
}

// NewArtifactServer starts a range-aware server for the given content.
func NewArtifactServer(t *testing.T, content []byte) *ArtifactServer {
	t.Helper()

	server := &ArtifactServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.requests.Add(1)
		http.ServeContent(w, r, "artifact.bin", time.Unix(0, 0), bytes.NewReader(content))
	}))
	t.Cleanup(server.Close)
	return server
}

// NewFlakyServer starts a server that fails the first failures requests with
// a 500 and serves content normally afterwards.
func NewFlakyServer(t *testing.T, failures int, content []byte) *ArtifactServer {
	t.Helper()

	server := &ArtifactServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := server.requests.Add(1)
		if int(n) <= failures {
			http.Error(w, "transient failure", http.StatusInternalServerError)
			return
		}
		http.ServeContent(w, r, "artifact.bin", time.Unix(0, 0), bytes.NewReader(content))
	}))
	t.Cleanup(server.Close)
	return server
}
