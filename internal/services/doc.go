// Package services defines shared utilities consumed by the reel pipeline and
// the external integrations it drives.
//
// Key responsibilities:
//   - Context helpers that stamp reel shortcodes, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, and the mapping from those
//     markers to HTTP status codes (client vs server failures).
//   - A shared circuit breaker wrapper for upstream HTTP clients.
//
// Use these helpers when wiring new stage logic so error classification and
// observability stay uniform across the pipeline.
package services
