package acquire

import (
	"context"
	"sync"

	"quarry/internal/logging"
)

// BatchResult tallies a batch acquisition. A failed artifact never aborts
// the batch; callers inspect the tally and decide whether partial success is
// acceptable.
type BatchResult struct {
	Succeeded int
	Failed    int
	Skipped   int
	// Failures maps artifact name to its final error after the retry
	// budget was exhausted.
	Failures map[string]error
}

// AcquireAll fetches every required artifact. With skipExisting true,
// artifacts already installed and verified are subtracted from the required
// set first; an empty required set short-circuits with all artifacts counted
// as skipped. Artifacts are processed with at most fetch.concurrency workers
// (default 1, i.e. strictly sequential); per-artifact transfers are never
// parallelized internally. The returned error is non-nil only on
// cancellation; individual failures live in the tally.
func (m *Manager) AcquireAll(ctx context.Context, onProgress Progress, skipExisting bool) (BatchResult, error) {
	result := BatchResult{Failures: make(map[string]error)}

	var required []string
	if skipExisting {
		states := m.Status()
		for _, artifact := range m.catalog.All() {
			if states[artifact.Name] == StateInstalled {
				result.Skipped++
				continue
			}
			required = append(required, artifact.Name)
		}
	} else {
		for _, artifact := range m.catalog.All() {
			required = append(required, artifact.Name)
		}
	}

	if len(required) == 0 {
		m.logger.Info("all artifacts already installed",
			logging.Int("skipped", result.Skipped),
		)
		return result, nil
	}

	m.logger.Info("starting batch acquisition",
		logging.Int("required", len(required)),
		logging.Int("skipped", result.Skipped),
		logging.Int("workers", m.cfg.Fetch.Concurrency),
	)

	// Progress consumers multiplex by message content; serialize callback
	// invocations so interleaved workers cannot corrupt their output.
	progress := onProgress
	if progress != nil && m.cfg.Fetch.Concurrency > 1 {
		var progressMu sync.Mutex
		inner := onProgress
		progress = func(bytesSoFar, totalBytes int64, message string) {
			progressMu.Lock()
			defer progressMu.Unlock()
			inner(bytesSoFar, totalBytes, message)
		}
	}

	names := make(chan string)
	var tallyMu sync.Mutex
	var wg sync.WaitGroup

	workers := m.cfg.Fetch.Concurrency
	if workers > len(required) {
		workers = len(required)
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range names {
				err := m.Acquire(ctx, name, progress, false)
				tallyMu.Lock()
				if err != nil {
					result.Failed++
					result.Failures[name] = err
				} else {
					result.Succeeded++
				}
				tallyMu.Unlock()
			}
		}()
	}

feed:
	for _, name := range required {
		select {
		case names <- name:
		case <-ctx.Done():
			break feed
		}
	}
	close(names)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	m.logger.Info("batch acquisition finished",
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}
