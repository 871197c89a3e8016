// Package speech turns audio tracks into text with the OpenAI transcription
// endpoint (whisper-1 by default).
package speech
