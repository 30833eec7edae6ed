// -- cmd/helpers.go --
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/karstfell/siteforge/internal/store"
)

// openStore connects to Postgres per the loaded config and optionally
// applies the schema. The returned closer must run before exit.
func openStore(ctx context.Context, logger *zap.Logger) (*store.Store, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid database dsn: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database pool: %w", err)
	}

	st, err := store.New(connectCtx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	if cfg.Database.MigrateOnStart {
		if err := st.Migrate(connectCtx); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return st, pool.Close, nil
}
