package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery prepares a title for an upstream search: NFC composed,
// surrounding space trimmed, inner whitespace runs collapsed to one space.
func NormalizeQuery(value string) string {
	return strings.Join(strings.Fields(norm.NFC.String(value)), " ")
}

// Truncate returns at most n runes of value.
func Truncate(value string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= n {
		return value
	}
	return string(runes[:n])
}

// Ellipsize truncates value to n runes, marking the cut with "...".
func Ellipsize(value string, n int) string {
	if len([]rune(value)) <= n {
		return value
	}
	if n <= 3 {
		return Truncate(value, n)
	}
	return Truncate(value, n-3) + "..."
}

// Title capitalises each word for display, e.g. "top100" labels in tables.
func Title(value string) string {
	return cases.Title(language.Und).String(value)
}
