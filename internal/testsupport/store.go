package testsupport

import (
	"context"
	"testing"

	"moviepicker/internal/config"
	"moviepicker/internal/watchlist"
)

// MustOpenStore opens the SQLite watch-list for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *watchlist.SQLiteStore {
	t.Helper()

	store, err := watchlist.OpenSQLite(context.Background(), cfg.Paths.DatabasePath)
	if err != nil {
		t.Fatalf("watchlist.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddMovie inserts an entry for tests.
func AddMovie(t testing.TB, store watchlist.Store, movie watchlist.NewMovie, source string) *watchlist.Movie {
	t.Helper()

	created, err := store.Add(context.Background(), movie, source)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return created
}
