package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"quarry/internal/fetch"
	"quarry/internal/layout"
	"quarry/internal/logging"
)

// Acquire fetches and verifies one artifact. With force false, an already
// installed and verified artifact returns immediately with no network
// traffic. Transfer failures and digest mismatches are retried up to the
// configured attempt budget with exponential backoff; exhausting the budget
// returns the last failure. An unknown name fails immediately with
// catalog.ErrUnknownArtifact, and cancellation returns context.Canceled with
// the staging file preserved.
func (m *Manager) Acquire(ctx context.Context, name string, onProgress Progress, force bool) error {
	artifact, err := m.catalog.Describe(name)
	if err != nil {
		return err
	}

	unlock := m.lockArtifact(name)
	defer unlock()

	dest := layout.Resolve(artifact, m.cfg.Paths.InstallRoot)
	log := m.logger.With(
		logging.String(logging.FieldArtifact, name),
		logging.String(logging.FieldPath, dest),
	)

	if !force {
		state, err := m.deriveState(artifact, dest)
		if err != nil {
			return err
		}
		if state == StateInstalled {
			log.Info("artifact already installed",
				logging.String(logging.FieldEventType, "acquire_skipped"),
			)
			return nil
		}
		if state == StateCorrupted {
			log.Warn("existing file failed verification, refetching",
				logging.String(logging.FieldEventType, "acquire_refetch"),
			)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	maxAttempts := m.cfg.Fetch.MaxAttempts
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := m.backoffDelay(attempt - 1)
			log.Info("waiting before retry",
				logging.Int(logging.FieldAttempt, attempt),
				logging.Duration("delay", delay),
			)
			if err := m.sleep(ctx, delay); err != nil {
				return err
			}
		}

		log.Info("fetching artifact",
			logging.Int(logging.FieldAttempt, attempt),
			logging.String("url", artifact.SourceURL),
		)

		if _, err := m.fetcher.Fetch(ctx, artifact.SourceURL, dest, artifact.SizeBytes, onProgress); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			lastErr = err
			log.Warn("transfer failed",
				logging.Int(logging.FieldAttempt, attempt),
				logging.Error(err),
				logging.String(logging.FieldEventType, "transfer_failed"),
			)
			continue
		}

		ok, verr := m.verifier.Verify(dest, artifact.Checksum, artifact.ChecksumType)
		if verr != nil {
			// Retrying cannot make an unknown algorithm computable, and
			// deleting a possibly-good download helps nobody. Surface it.
			return fmt.Errorf("verify %s: %w", name, verr)
		}
		if !ok {
			lastErr = fmt.Errorf("%w: %s at %s", ErrIntegrity, name, dest)
			if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
				log.Warn("failed to remove corrupted file", logging.Error(err))
			}
			log.Warn("checksum mismatch, file removed",
				logging.Int(logging.FieldAttempt, attempt),
				logging.String("expected", artifact.Checksum),
				logging.String(logging.FieldEventType, "checksum_mismatch"),
			)
			continue
		}

		log.Info("artifact installed",
			logging.Int(logging.FieldAttempt, attempt),
			logging.String(logging.FieldEventType, "acquire_complete"),
		)
		return nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no attempt made", fetch.ErrTransfer)
	}
	return fmt.Errorf("acquire %s: %d attempts exhausted: %w", name, maxAttempts, lastErr)
}
