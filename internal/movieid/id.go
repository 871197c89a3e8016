// Package movieid models watch-list identifiers. An entry is keyed either by
// its canonical IMDb id or, for reel imports that were never matched against
// IMDb, by a synthetic id derived from the extracted titles.
package movieid

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// SyntheticPrefix marks identifiers that do not come from IMDb.
const SyntheticPrefix = "insta_"

var imdbPattern = regexp.MustCompile(`^tt\d+$`)

// Kind distinguishes canonical from synthetic identifiers.
type Kind int

const (
	KindUnknown Kind = iota
	KindCanonical
	KindSynthetic
)

func (k Kind) String() string {
	switch k {
	case KindCanonical:
		return "canonical"
	case KindSynthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

// ID is a watch-list identifier.
type ID struct {
	kind  Kind
	value string
}

// Canonical wraps an IMDb id such as tt0120737.
func Canonical(imdbID string) ID {
	return ID{kind: KindCanonical, value: strings.ToLower(strings.TrimSpace(imdbID))}
}

// Synthetic derives the identifier of a reel mention from its titles.
func Synthetic(titleEN, titleRU string) ID {
	sum := sha1.Sum([]byte(titleEN + "|" + titleRU))
	return ID{kind: KindSynthetic, value: SyntheticPrefix + hex.EncodeToString(sum[:])[:16]}
}

// Parse classifies user input or a stored identifier. Values that are neither
// an IMDb id nor synthetic keep their text with KindUnknown.
func Parse(value string) ID {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return ID{}
	case strings.HasPrefix(value, SyntheticPrefix):
		return ID{kind: KindSynthetic, value: value}
	case imdbPattern.MatchString(strings.ToLower(value)):
		return Canonical(value)
	default:
		return ID{kind: KindUnknown, value: value}
	}
}

// Kind returns the identifier kind.
func (id ID) Kind() Kind { return id.kind }

// IsCanonical reports whether the id can be looked up in IMDb-keyed services.
func (id ID) IsCanonical() bool { return id.kind == KindCanonical }

// IsSynthetic reports whether the id was derived locally.
func (id ID) IsSynthetic() bool { return id.kind == KindSynthetic }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id.value == "" }

// String renders the stored form.
func (id ID) String() string { return id.value }

// MarshalText renders the stored form.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.value), nil }

// UnmarshalText parses the stored form.
func (id *ID) UnmarshalText(text []byte) error {
	*id = Parse(string(text))
	return nil
}
