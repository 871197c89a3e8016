// Package api serves the moviepicker HTTP API.
//
// Routes are mounted on a chi router under /api. The reel pipeline routes
// (/api/instagram/import and /api/instagram/search) are rate limited per
// client IP and run under the configured pipeline timeout. Everything under
// /api except /api/health requires the bearer token when one is configured.
//
// Errors are reported as {"error": "<message>"} with the status chosen by
// services.HTTPStatus: pipeline domain failures, validation problems and
// duplicates are 400, unknown entries 404, an open upstream circuit 503,
// anything else 500.
//
// Request and response bodies are JSON (goccy/go-json). Request bodies are
// checked with go-playground/validator struct tags before handlers run.
package api
