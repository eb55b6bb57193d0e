package config

import (
	"os"
	"strings"
)

// normalize expands user paths and applies environment overrides. Called by
// Load before validation so Validate always sees canonical values.
func (c *Config) normalize() error {
	if env := strings.TrimSpace(os.Getenv("QUARRY_INSTALL_ROOT")); env != "" {
		c.Paths.InstallRoot = env
	}
	if env := strings.TrimSpace(os.Getenv("QUARRY_MANIFEST")); env != "" {
		c.Paths.Manifest = env
	}

	for _, field := range []*string{&c.Paths.InstallRoot, &c.Paths.Manifest, &c.Paths.LogDir} {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = defaultConcurrency
	}
	if c.Fetch.ChunkSizeKiB == 0 {
		c.Fetch.ChunkSizeKiB = defaultChunkSizeKiB
	}
	if c.Fetch.BackoffBaseSeconds == 0 {
		c.Fetch.BackoffBaseSeconds = defaultBackoffBaseSeconds
	}

	return nil
}
