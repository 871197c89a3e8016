package watchlist

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"moviepicker/internal/movieid"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// sqliteSchemaVersion is bumped when the schema changes.
const sqliteSchemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	sqliteConstraintUnique  = 2067
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// Fixed-width timestamps keep ORDER BY added_at chronological.
	sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLiteStore keeps the watch-list in a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != sqliteSchemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate it)",
			ErrSchemaMismatch, version, sqliteSchemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", sqliteSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// List returns entries matching filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Movie, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Watched != nil {
		clauses = append(clauses, "is_watched = ?")
		args = append(args, boolInt(*filter.Watched))
	}
	query := "SELECT " + movieColumns + " FROM movies"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY added_at DESC, id DESC"
	return s.queryMovies(ctx, query, args...)
}

// Unwatched returns every entry not yet marked watched.
func (s *SQLiteStore) Unwatched(ctx context.Context) ([]Movie, error) {
	watched := false
	return s.List(ctx, Filter{Watched: &watched})
}

// Get returns the entry with id, or nil when absent.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	return scanOptional(row)
}

// GetByIMDbID returns the entry keyed by id, or nil when absent.
func (s *SQLiteStore) GetByIMDbID(ctx context.Context, id movieid.ID) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE imdb_id = ?", id.String())
	return scanOptional(row)
}

// Add inserts a new entry. A duplicate imdb id fails with services.ErrConflict.
func (s *SQLiteStore) Add(ctx context.Context, movie NewMovie, source string) (*Movie, error) {
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
	addedAt := time.Now().UTC().Format(sqliteTimeLayout)

	var res sql.Result
	err = retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO movies (imdb_id, title, original_title, year, genres, description, plot, cast_members, director, poster_url, imdb_rating, awards, is_watched, source, added_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			movie.IMDbID.String(), movie.Title, nullString(movie.OriginalTitle), nullInt(movie.Year), genres,
			nullString(movie.Description), nullString(movie.Plot), cast, nullString(movie.Director),
			nullString(movie.PosterURL), nullFloat(movie.IMDbRating), nullString(movie.Awards),
			source, addedAt,
		)
		return execErr
	})
	if err != nil {
		if isSQLiteUnique(err) {
			return nil, conflictError(movie.IMDbID, err)
		}
		return nil, fmt.Errorf("insert movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}
	return s.Get(ctx, id)
}

// SetWatched updates the watched flag and returns the updated entry.
func (s *SQLiteStore) SetWatched(ctx context.Context, id int64, watched bool) (*Movie, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "UPDATE movies SET is_watched = ? WHERE id = ?", boolInt(watched), id)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFoundError(id)
	}
	return s.Get(ctx, id)
}

// Delete removes an entry. Missing ids fail with services.ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFoundError(id)
	}
	return nil
}

func (s *SQLiteStore) queryMovies(ctx context.Context, query string, args ...any) ([]Movie, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := []Movie{}
	for rows.Next() {
		movie, err := scanSQLite(rows)
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

func scanOptional(row *sql.Row) (*Movie, error) {
	movie, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func scanSQLite(scanner rowScanner) (Movie, error) {
	var (
		row      movieRow
		watched  int64
		addedRaw string
	)
	if err := scanner.Scan(row.dest(&watched, &addedRaw)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Movie{}, err
		}
		return Movie{}, fmt.Errorf("scan movie: %w", err)
	}
	movie, err := row.movie()
	if err != nil {
		return Movie{}, err
	}
	movie.IsWatched = watched != 0
	if ts, err := time.Parse(sqliteTimeLayout, addedRaw); err == nil {
		movie.AddedAt = ts
	} else if ts, err := time.Parse(time.RFC3339Nano, addedRaw); err == nil {
		movie.AddedAt = ts
	}
	return movie, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func isSQLiteUnique(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteConstraintUnique {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
