// Package logs reads back the moviepicker log file for `moviepicker logs`.
//
// Stream prints the last N lines and can keep following the file, picking up
// from the start again when the file is truncated or replaced.
package logs
