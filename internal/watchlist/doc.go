// Package watchlist persists the user's movie list.
//
// Two backends implement Store: SQLite (modernc.org/sqlite, the default,
// single file under the data directory) and PostgreSQL (pgx pool) for shared
// deployments. Both enforce a UNIQUE imdb_id so a concurrent duplicate insert
// surfaces as services.ErrConflict. Genres and cast are stored as JSON arrays.
// Lookups return (nil, nil) for absent rows; mutations of absent rows fail
// with services.ErrNotFound.
package watchlist
