package acquire

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"quarry/internal/catalog"
	"quarry/internal/config"
	"quarry/internal/fetch"
	"quarry/internal/integrity"
	"quarry/internal/layout"
	"quarry/internal/logging"
)

// ErrIntegrity indicates a fetched artifact failed digest verification.
// Recoverable within the retry budget: the file is deleted and re-fetched.
var ErrIntegrity = errors.New("acquire: integrity verification failed")

// Progress receives transfer updates; see fetch.Progress for the contract.
type Progress = fetch.Progress

// Options carries optional manager collaborators.
type Options struct {
	// Client overrides the HTTP client used for transfers. Tests point
	// this at an httptest server.
	Client *http.Client
	// Logger receives structured diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Manager owns the acquisition workflow for all catalogued artifacts.
type Manager struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	fetcher  *fetch.Fetcher
	verifier *integrity.Verifier
	logger   *slog.Logger

	// sleep is the backoff delay hook; replaced in tests so retry paths
	// run instantly.
	sleep func(context.Context, time.Duration) error

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewManager constructs a Manager over a loaded catalog and validated config.
func NewManager(cfg *config.Config, cat *catalog.Catalog, opts Options) *Manager {
	logger := opts.Logger
	return &Manager{
		cfg:     cfg,
		catalog: cat,
		fetcher: fetch.New(fetch.Options{
			Client:    opts.Client,
			Timeout:   cfg.FetchTimeout(),
			ChunkSize: cfg.ChunkSize(),
			Logger:    logger,
		}),
		verifier: integrity.New(cfg.Fetch.AllowUnknownChecksum, logger),
		logger:   logging.NewComponentLogger(logger, "acquire"),
		sleep:    sleepContext,
		inflight: make(map[string]*sync.Mutex),
	}
}

// ListRequired returns every catalogued artifact in manifest order.
func (m *Manager) ListRequired() []catalog.Artifact {
	return m.catalog.All()
}

// Describe returns the descriptor for name.
func (m *Manager) Describe(name string) (catalog.Artifact, error) {
	return m.catalog.Describe(name)
}

// DestinationPath returns the resolved final path for name under the
// configured install root.
func (m *Manager) DestinationPath(name string) (string, error) {
	artifact, err := m.catalog.Describe(name)
	if err != nil {
		return "", err
	}
	return layout.Resolve(artifact, m.cfg.Paths.InstallRoot), nil
}

// lockArtifact takes the per-name mutex guarding the artifact's staging
// file. Two concurrent acquisitions of the same name would corrupt the
// resume offset invariant.
func (m *Manager) lockArtifact(name string) func() {
	m.mu.Lock()
	lock, ok := m.inflight[name]
	if !ok {
		lock = &sync.Mutex{}
		m.inflight[name] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// backoffDelay computes the exponential delay before retry number attempt
// (1-based), with jitter so simultaneous clients do not reconverge. Delays
// are strictly increasing: the jittered value stays below the next step's
// minimum.
func (m *Manager) backoffDelay(attempt int) time.Duration {
	base := m.cfg.BackoffBase()
	delay := base << attempt
	half := int64(delay / 2)
	if half > 0 {
		delay += time.Duration(rand.Int64N(half))
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
