package watchlist

import (
	"context"
	"time"

	"moviepicker/internal/movieid"
)

// Entry sources.
const (
	SourcePersonal  = "personal"
	SourceTop100    = "top100"
	SourceAwards    = "awards"
	SourceInstagram = "instagram"
)

// Movie is a stored watch-list entry.
type Movie struct {
	ID            int64      `json:"id"`
	IMDbID        movieid.ID `json:"imdb_id"`
	Title         string     `json:"title"`
	OriginalTitle string     `json:"original_title,omitempty"`
	Year          int        `json:"year,omitempty"`
	Genres        []string   `json:"genres"`
	Description   string     `json:"description,omitempty"`
	Plot          string     `json:"plot,omitempty"`
	Cast          []string   `json:"cast"`
	Director      string     `json:"director,omitempty"`
	PosterURL     string     `json:"poster_url,omitempty"`
	IMDbRating    *float64   `json:"imdb_rating,omitempty"`
	Awards        string     `json:"awards,omitempty"`
	IsWatched     bool       `json:"is_watched"`
	Source        string     `json:"source"`
	AddedAt       time.Time  `json:"added_at"`
}

// NewMovie holds the fields supplied when adding an entry. IMDbID is
// canonical for OMDb-backed entries and synthetic for reel imports.
type NewMovie struct {
	IMDbID        movieid.ID
	Title         string
	OriginalTitle string
	Year          int
	Genres        []string
	Description   string
	Plot          string
	Cast          []string
	Director      string
	PosterURL     string
	IMDbRating    *float64
	Awards        string
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Source  string
	Watched *bool
}

// Store persists the watch-list.
type Store interface {
	List(ctx context.Context, filter Filter) ([]Movie, error)
	Get(ctx context.Context, id int64) (*Movie, error)
	GetByIMDbID(ctx context.Context, id movieid.ID) (*Movie, error)
	Add(ctx context.Context, movie NewMovie, source string) (*Movie, error)
	SetWatched(ctx context.Context, id int64, watched bool) (*Movie, error)
	Delete(ctx context.Context, id int64) error
	Unwatched(ctx context.Context) ([]Movie, error)
	Close() error
}
