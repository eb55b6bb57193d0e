// Package preflight validates the environment before any artifacts are
// fetched: install root access, manifest readability, and free disk space
// against the catalog's declared sizes.
package preflight

import (
	"log/slog"
	"os"

	"quarry/internal/catalog"
	"quarry/internal/config"
	"quarry/internal/layout"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config.
func RunAll(cfg *config.Config, logger *slog.Logger) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckInstallRoot(cfg.Paths.InstallRoot))

	manifestResult, cat := CheckManifest(cfg.Paths.Manifest, logger)
	results = append(results, manifestResult)

	if cat != nil {
		results = append(results, CheckDiskSpace(cfg.Paths.InstallRoot, pendingBytes(cat, cfg.Paths.InstallRoot)))
	}

	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// pendingBytes sums the declared sizes of artifacts not yet present at their
// destination. Artifacts without a declared size contribute nothing, so the
// estimate is a lower bound.
func pendingBytes(cat *catalog.Catalog, installRoot string) int64 {
	var total int64
	for _, artifact := range cat.All() {
		if artifact.SizeBytes <= 0 {
			continue
		}
		if _, err := os.Stat(layout.Resolve(artifact, installRoot)); err == nil {
			continue
		}
		total += artifact.SizeBytes
	}
	return total
}
