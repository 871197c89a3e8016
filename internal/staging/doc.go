// Package staging removes per-run transient directories that a crashed
// process left behind in the temp directory.
package staging
