// Package staging inspects and reclaims partial download files left under
// the install root. Partials carry the fetch staging suffix and sit next to
// their final destination, so a walk over the install root finds them all.
package staging

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quarry/internal/fetch"
	"quarry/internal/logging"
)

// PartialInfo contains metadata about one staging file.
type PartialInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// CleanResult contains the outcome of a staging cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a file path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// ListPartials walks installRoot and returns every staging file found.
func ListPartials(installRoot string) ([]PartialInfo, error) {
	installRoot = strings.TrimSpace(installRoot)
	if installRoot == "" {
		return nil, nil
	}

	var partials []PartialInfo
	err := filepath.WalkDir(installRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fetch.StagingSuffix) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		partials = append(partials, PartialInfo{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return partials, err
}

// CleanStale removes staging files older than maxAge. A maxAge of zero
// removes every staging file regardless of age. Fresh partials are left
// alone so an interrupted transfer can still resume.
func CleanStale(installRoot string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	log := logging.NewComponentLogger(logger, "staging")

	partials, err := ListPartials(installRoot)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: installRoot, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, partial := range partials {
		if maxAge > 0 && partial.ModTime.After(cutoff) {
			continue
		}
		if err := os.Remove(partial.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: partial.Path, Error: err})
			log.Warn("failed to remove stale staging file",
				logging.String(logging.FieldPath, partial.Path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "staging_cleanup_failed"),
			)
			continue
		}
		result.Removed = append(result.Removed, partial.Path)
		log.Info("removed stale staging file",
			logging.String(logging.FieldPath, partial.Path),
			logging.Duration("age", time.Since(partial.ModTime)),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}
	return result
}
