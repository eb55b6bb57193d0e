// Package config loads, normalizes, and validates quarry configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// QUARRY_INSTALL_ROOT. The Config type centralizes every knob the CLI and
// acquisition manager need: install root, manifest location, transfer retry
// budget, timeouts, and log routing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
