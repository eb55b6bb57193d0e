package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.InstallRoot == "" {
		return errors.New("paths.install_root must be set")
	}
	if c.Paths.Manifest == "" {
		return errors.New("paths.manifest must be set")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.MaxAttempts <= 0 {
		return errors.New("fetch.max_attempts must be positive")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout_seconds must be positive")
	}
	if c.Fetch.Concurrency < 1 || c.Fetch.Concurrency > maxConcurrency {
		return fmt.Errorf("fetch.concurrency must be between 1 and %d", maxConcurrency)
	}
	if c.Fetch.ChunkSizeKiB < 8 {
		return errors.New("fetch.chunk_size_kib must be at least 8")
	}
	if c.Fetch.BackoffBaseSeconds <= 0 {
		return errors.New("fetch.backoff_base_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
