// Package llm provides an OpenAI-compatible chat completion client.
//
// It is used by:
//   - Extraction: identify movies in a reel from transcript, caption and frames
//   - Catalog: short Russian descriptions and watch-list recommendations
//
// Requests may attach images as data URLs (vision mode) or enable
// web_search_options for search-capable models. A client without an API key
// fails with services.ErrMissingCredentials before any network call.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s, 3 attempts by
// default). Context cancellation aborts retries immediately. When a breaker
// is configured, each Complete call counts once against it.
package llm
