// Package pipeline runs a reel through its stages: fetch, audio extraction,
// optional frame sampling, transcription and title extraction. Search then
// resolves each mention against OMDb; Import stores each mention as a
// watch-list entry keyed by a synthetic id.
//
// Each run owns a directory under the temp dir. Audio and frames are written
// there, registered in a transient set as soon as they exist, and removed on
// every exit path. Downloaded videos live in the video dir and are kept.
package pipeline
