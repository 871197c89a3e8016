package extraction

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"moviepicker/internal/textutil"
)

const snippetRunes = 300

var (
	arraySpanPattern     = regexp.MustCompile(`(?s)\[.*\]`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseResult reports the outcome of ParseMentions.
type ParseResult struct {
	Mentions []Mention
	// Failed is set when no JSON could be recovered from the text.
	Failed bool
	// Snippet holds the first 300 runes of the candidate text on failure.
	Snippet string
}

// ParseMentions turns raw model output into mentions:
// StripFence, ExtractArraySpan, Parse, RepairTrailingCommas on failure,
// ScanArrays on failure, Validate.
// It never returns an error; unrecoverable text yields an empty result.
func ParseMentions(raw string) ParseResult {
	text := StripFence(raw)
	candidate := ExtractArraySpan(text)
	value, err := parseJSON(candidate)
	if err != nil {
		value, err = parseJSON(RepairTrailingCommas(candidate))
	}
	if err != nil {
		if found, ok := ScanArrays(text); ok {
			value, err = found, nil
		}
	}
	if err != nil {
		return ParseResult{Mentions: []Mention{}, Failed: true, Snippet: textutil.Truncate(candidate, snippetRunes)}
	}
	return ParseResult{Mentions: validate(value)}
}

// StripFence removes a surrounding markdown code fence.
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
	}
	if strings.HasSuffix(text, "```") {
		text = text[:strings.LastIndex(text, "```")]
	}
	return strings.TrimSpace(text)
}

// ExtractArraySpan keeps the text from the first '[' to the last ']', when present.
func ExtractArraySpan(text string) string {
	if span := arraySpanPattern.FindString(text); span != "" {
		return span
	}
	return text
}

// ScanArrays decodes a JSON array starting at each '[' in turn and returns the
// first one that is empty or holds an object. Bracketed citations such as
// "[1]" or "[imdb.com](...)" around the real array are skipped.
func ScanArrays(text string) ([]any, bool) {
	for _, source := range []string{text, RepairTrailingCommas(text)} {
		for i := 0; i < len(source); i++ {
			if source[i] != '[' {
				continue
			}
			var items []any
			if err := json.NewDecoder(strings.NewReader(source[i:])).Decode(&items); err != nil {
				continue
			}
			if len(items) == 0 || hasObject(items) {
				return items, true
			}
		}
	}
	return nil, false
}

func hasObject(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); ok {
			return true
		}
	}
	return false
}

// RepairTrailingCommas drops commas that directly precede a closing bracket or brace.
func RepairTrailingCommas(text string) string {
	return trailingCommaPattern.ReplaceAllString(text, "$1")
}

func parseJSON(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// validate wraps a lone value into a list and keeps objects carrying title_en.
func validate(value any) []Mention {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	mentions := make([]Mention, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := obj["title_en"]; !ok {
			continue
		}
		mentions = append(mentions, Mention{
			TitleRU:     stringField(obj, "title_ru"),
			TitleEN:     stringField(obj, "title_en"),
			Description: stringField(obj, "description"),
		})
	}
	return mentions
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
