// Package logging assembles structured slog loggers used across moviepicker.
//
// It owns the console (tint) and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code automatically
// tags log lines with request ids, reel shortcodes and stages. A no-op logger
// is provided for tests and wiring code that cannot fail.
package logging
