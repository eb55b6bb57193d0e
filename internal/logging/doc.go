// Package logging assembles the structured slog loggers shared by the quarry
// CLI and acquisition manager.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers plus standardized field names so
// transfer and verification code tag log lines consistently. A no-op logger
// is provided for tests and wiring code that cannot fail.
//
// Loggers are always constructed explicitly and passed into components;
// nothing in this repository logs through ambient global state.
package logging
