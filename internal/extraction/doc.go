// Package extraction asks a chat model which movies a reel talks about.
//
// The model sees the transcript and caption, plus JPEG frames in vision
// mode, and answers with a JSON array of {title_ru, title_en, description}.
// Search models wrap that array in prose or code fences often enough that
// ParseMentions runs an explicit recovery pipeline and never fails the run.
package extraction
