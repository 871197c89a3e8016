// Package config loads, normalizes, and validates moviepicker configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_API_KEY, OPENAI_API_KEY and INSTAGRAM_COOKIES_PATH. The Config type
// centralizes every knob the server and CLI need so video/temp directories,
// the watch-list backend and external service credentials are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
