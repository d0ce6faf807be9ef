package locprop

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/zlv-data/geolink/internal/db"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate runs all pending SQL migrations in lexicographic order. It creates
// the schema_migrations tracking table if needed, then applies any .sql files
// not yet recorded.
func Migrate(ctx context.Context, pool db.Pool) error {
	log := zap.L().With(zap.String("component", "locprop.migrate"))

	// One transaction pins one pooled connection for the whole run, and the
	// advisory lock against concurrent migration runs (e.g. overlapping
	// deploys) is transaction-scoped, so it releases on commit or rollback
	// on that same session.
	tx, err := pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "locprop: begin migration transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(4217406)"); err != nil {
		return eris.Wrap(err, "locprop: acquire migration advisory lock")
	}

	if err := ensureMigrationTable(ctx, tx); err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return eris.Wrap(err, "locprop: read migration dir")
	}

	// Lexicographic = numeric order with zero-padded names.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	applied, err := appliedMigrations(ctx, tx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if applied[name] {
			continue
		}

		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return eris.Wrapf(err, "locprop: read migration %s", name)
		}

		log.Info("applying migration", zap.String("file", name))

		if _, err := tx.Exec(ctx, string(data)); err != nil {
			return eris.Wrapf(err, "locprop: apply migration %s", name)
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (filename, applied_at) VALUES ($1, now())",
			name,
		); err != nil {
			return eris.Wrapf(err, "locprop: record migration %s", name)
		}

		log.Info("migration applied", zap.String("file", name))
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "locprop: commit migrations")
	}
	return nil
}

// db.Pool and pgx.Tx share the query surface these helpers need, so Migrate
// can run them on its transaction while tests exercise them directly.
func ensureMigrationTable(ctx context.Context, q db.Pool) error {
	sql := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id         SERIAL PRIMARY KEY,
			filename   TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	if _, err := q.Exec(ctx, sql); err != nil {
		return eris.Wrap(err, "locprop: ensure migration table")
	}
	return nil
}

func appliedMigrations(ctx context.Context, q db.Pool) (map[string]bool, error) {
	rows, err := q.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, eris.Wrap(err, "locprop: query applied migrations")
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "locprop: scan migration row")
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
