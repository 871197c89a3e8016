package watchlist

import (
	"database/sql"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"moviepicker/internal/movieid"
	"moviepicker/internal/services"
)

const movieColumns = "id, imdb_id, title, original_title, year, genres, description, plot, cast_members, director, poster_url, imdb_rating, awards, is_watched, source, added_at"

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

// movieRow holds nullable columns while scanning.
type movieRow struct {
	id            int64
	imdbID        string
	title         string
	originalTitle sql.NullString
	year          sql.NullInt64
	genres        []byte
	description   sql.NullString
	plot          sql.NullString
	cast          []byte
	director      sql.NullString
	posterURL     sql.NullString
	rating        sql.NullFloat64
	awards        sql.NullString
	source        string
}

func (r *movieRow) dest(watched, addedAt any) []any {
	return []any{
		&r.id, &r.imdbID, &r.title, &r.originalTitle, &r.year, &r.genres,
		&r.description, &r.plot, &r.cast, &r.director, &r.posterURL,
		&r.rating, &r.awards, watched, &r.source, addedAt,
	}
}

func (r *movieRow) movie() (Movie, error) {
	m := Movie{
		ID:            r.id,
		IMDbID:        movieid.Parse(r.imdbID),
		Title:         r.title,
		OriginalTitle: r.originalTitle.String,
		Year:          int(r.year.Int64),
		Description:   r.description.String,
		Plot:          r.plot.String,
		Director:      r.director.String,
		PosterURL:     r.posterURL.String,
		Awards:        r.awards.String,
		Source:        r.source,
	}
	if r.rating.Valid {
		rating := r.rating.Float64
		m.IMDbRating = &rating
	}
	var err error
	if m.Genres, err = decodeList(r.genres); err != nil {
		return Movie{}, fmt.Errorf("decode genres for %s: %w", r.imdbID, err)
	}
	if m.Cast, err = decodeList(r.cast); err != nil {
		return Movie{}, fmt.Errorf("decode cast for %s: %w", r.imdbID, err)
	}
	return m, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw []byte) ([]string, error) {
	out := []string{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func validateNew(movie NewMovie, source string) error {
	switch movie.IMDbID.Kind() {
	case movieid.KindCanonical, movieid.KindSynthetic:
	default:
		return services.Wrap(services.ErrValidation, "watchlist", "add", fmt.Sprintf("invalid imdb id %q", movie.IMDbID), nil)
	}
	if strings.TrimSpace(movie.Title) == "" {
		return services.Wrap(services.ErrValidation, "watchlist", "add", "title required", nil)
	}
	switch source {
	case SourcePersonal, SourceTop100, SourceAwards, SourceInstagram:
		return nil
	default:
		return services.Wrap(services.ErrValidation, "watchlist", "add", fmt.Sprintf("unknown source %q", source), nil)
	}
}

func conflictError(imdbID movieid.ID, err error) error {
	return services.Wrap(services.ErrConflict, "watchlist", "add", fmt.Sprintf("movie %s is already in the list", imdbID), err)
}

func notFoundError(id int64) error {
	return services.Wrap(services.ErrNotFound, "watchlist", "", fmt.Sprintf("movie %d not found", id), nil)
}
