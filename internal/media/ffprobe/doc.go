// Package ffprobe wraps the ffprobe duration query used to place frame
// snapshots.
package ffprobe
