// Package ffmpeg derives the transient artifacts of a reel run from the
// downloaded video: a speech-friendly MP3 track and evenly spaced JPEG
// frames for vision prompts.
//
// All invocations go through a media.CommandRunner. Failures are reported
// as services.ErrTranscode.
package ffmpeg
