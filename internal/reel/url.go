package reel

import (
	"fmt"
	"regexp"
	"strings"

	"moviepicker/internal/services"
)

var reelURLPattern = regexp.MustCompile(`^https?://(www\.)?instagram\.com/(reel|reels)/([\w-]+)/?`)

// Reference is a validated reel link.
type Reference struct {
	URL       string
	Shortcode string
}

// ValidateURL trims raw and checks that it starts with a reel link. The
// trimmed string is returned unchanged, including any query suffix.
func ValidateURL(raw string) (Reference, error) {
	trimmed := strings.TrimSpace(raw)
	match := reelURLPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return Reference{}, services.Wrap(
			services.ErrInvalidInput,
			"validate",
			"",
			fmt.Sprintf("invalid Instagram Reel URL: %s; expected format: https://www.instagram.com/reel/ABC123/", raw),
			nil,
		)
	}
	return Reference{URL: trimmed, Shortcode: match[3]}, nil
}
