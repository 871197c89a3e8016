// Package notifications pushes reel run outcomes to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// the pipeline can always hold a Service.
package notifications
