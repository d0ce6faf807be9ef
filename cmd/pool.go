package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// dbPool creates a pgxpool.Pool from the configured connection string.
func dbPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		return nil, eris.New("geolink: no database_url configured (set store.database_url or --db-url)")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "geolink: create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "geolink: ping database")
	}

	fmt.Println("Connected to database")
	return pool, nil
}
