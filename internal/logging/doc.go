// Package logging assembles the structured slog loggers used across the
// paperweights pipeline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can
// automatically tag log lines with the episode date, stage, and run
// correlation id. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
