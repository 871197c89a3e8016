// Package media holds the command runner shared by the ffmpeg and ffprobe
// wrappers. Subpackages never shell out directly so tests can inject fakes.
package media
