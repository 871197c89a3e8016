package watchlist

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"moviepicker/internal/movieid"
)

//go:embed schema_postgres.sql
var postgresSchema string

const pgUniqueViolation = "23505"

// PostgresStore keeps the watch-list in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// List returns entries matching filter, newest first.
func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Movie, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Source != "" {
		args = append(args, filter.Source)
		clauses = append(clauses, "source = $"+strconv.Itoa(len(args)))
	}
	if filter.Watched != nil {
		args = append(args, *filter.Watched)
		clauses = append(clauses, "is_watched = $"+strconv.Itoa(len(args)))
	}
	query := "SELECT " + movieColumns + " FROM movies"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY added_at DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := []Movie{}
	for rows.Next() {
		movie, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

// Unwatched returns every entry not yet marked watched.
func (s *PostgresStore) Unwatched(ctx context.Context) ([]Movie, error) {
	watched := false
	return s.List(ctx, Filter{Watched: &watched})
}

// Get returns the entry with id, or nil when absent.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*Movie, error) {
	return s.one(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = $1", id)
}

// GetByIMDbID returns the entry keyed by id, or nil when absent.
func (s *PostgresStore) GetByIMDbID(ctx context.Context, id movieid.ID) (*Movie, error) {
	return s.one(ctx, "SELECT "+movieColumns+" FROM movies WHERE imdb_id = $1", id.String())
}

// Add inserts a new entry. A duplicate imdb id fails with services.ErrConflict.
func (s *PostgresStore) Add(ctx context.Context, movie NewMovie, source string) (*Movie, error) {
	if err := validateNew(movie, source); err != nil {
		return nil, err
	}
	genres, err := encodeList(movie.Genres)
	if err != nil {
		return nil, fmt.Errorf("encode genres: %w", err)
	}
	cast, err := encodeList(movie.Cast)
	if err != nil {
		return nil, fmt.Errorf("encode cast: %w", err)
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO movies (imdb_id, title, original_title, year, genres, description, plot, cast_members, director, poster_url, imdb_rating, awards, is_watched, source, added_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8::jsonb, $9, $10, $11, $12, FALSE, $13, $14)
		 RETURNING `+movieColumns,
		movie.IMDbID.String(), movie.Title, nullString(movie.OriginalTitle), nullInt(movie.Year), genres,
		nullString(movie.Description), nullString(movie.Plot), cast, nullString(movie.Director),
		nullString(movie.PosterURL), nullFloat(movie.IMDbRating), nullString(movie.Awards),
		source, time.Now().UTC(),
	)
	created, err := scanPostgres(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, conflictError(movie.IMDbID, err)
		}
		return nil, fmt.Errorf("insert movie: %w", err)
	}
	return &created, nil
}

// SetWatched updates the watched flag and returns the updated entry.
func (s *PostgresStore) SetWatched(ctx context.Context, id int64, watched bool) (*Movie, error) {
	movie, err := s.one(ctx, "UPDATE movies SET is_watched = $1 WHERE id = $2 RETURNING "+movieColumns, watched, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, notFoundError(id)
	}
	return movie, nil
}

// Delete removes an entry. Missing ids fail with services.ErrNotFound.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM movies WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError(id)
	}
	return nil
}

func (s *PostgresStore) one(ctx context.Context, query string, args ...any) (*Movie, error) {
	movie, err := scanPostgres(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func scanPostgres(scanner rowScanner) (Movie, error) {
	var (
		row     movieRow
		watched bool
		addedAt time.Time
	)
	if err := scanner.Scan(row.dest(&watched, &addedAt)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, err
		}
		return Movie{}, fmt.Errorf("scan movie: %w", err)
	}
	movie, err := row.movie()
	if err != nil {
		return Movie{}, err
	}
	movie.IsWatched = watched
	movie.AddedAt = addedAt.UTC()
	return movie, nil
}
