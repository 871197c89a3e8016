package watchlist

import (
	"context"
	"fmt"
	"strings"

	"moviepicker/internal/config"
)

// Open returns the store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store.Driver)) {
	case "", config.StoreSQLite:
		return OpenSQLite(ctx, cfg.Paths.DatabasePath)
	case config.StorePostgres:
		if strings.TrimSpace(cfg.Store.PostgresDSN) == "" {
			return nil, fmt.Errorf("store.postgres_dsn (or DATABASE_URL) is required for the postgres driver")
		}
		return OpenPostgres(ctx, cfg.Store.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
