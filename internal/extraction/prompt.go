package extraction

import "strings"

// SystemPrompt instructs the model to list every movie mentioned in a reel.
const SystemPrompt = `You are a movie information extractor with web search. You receive a transcript and/or caption from an Instagram Reel that discusses one or more movies/films/series.

Your task: extract ALL movies mentioned and return a JSON array.

Each element must have exactly these fields:
- "title_ru": movie title in Russian
- "title_en": the official English title of the movie
- "description": a 1-2 sentence description of what the movie is about, in Russian

Rules:
- "title_en" MUST be the real official English title as listed on IMDb. Search the web to verify the correct English title for every movie. Do NOT translate the Russian title literally and do NOT guess.
- For well-known films use the correct English title (e.g. «Бедные-несчастные» = "Poor Things", «Фаворитка» = "The Favourite").
- For NEW or unknown movies, search the web to find the official English title. For example: «Фэкхем-Холл» → search "Фэкхем-Холл фильм 2025 english title" → find "The Amateur". NEVER transliterate if the real title can be found.
- The Reel may discuss a NEW upcoming movie. Pay close attention to context: if the caption says "новая" / "новый фильм" / "скоро", the main subject is that new movie, not previously released films mentioned for comparison.
- If only one language title is available, search for the counterpart.
- If no movies are found, return an empty array: []
- Return ONLY valid JSON, no markdown, no extra text.
`

// BuildUserText assembles the transcript and caption block sent to the model.
// Fields that are blank after trimming are left out, so two blank inputs give "".
func BuildUserText(transcript, caption string) string {
	transcript = strings.TrimSpace(transcript)
	caption = strings.TrimSpace(caption)
	text := ""
	if transcript != "" {
		text += "Transcript:\n" + transcript + "\n\n"
	}
	if caption != "" {
		text += "Caption:\n" + caption + "\n\n"
	}
	return text
}
