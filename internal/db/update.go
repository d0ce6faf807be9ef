package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpdateConfig defines the parameters for a bulk update via a literal
// VALUES table joined on a composite key.
type UpdateConfig struct {
	Table   string   // target table (e.g., "owners_housing")
	KeyCols []string // columns forming the join key
	SetCols []string // columns written from the values table
	Types   []string // Postgres type per values column, key columns first
}

// maxParams is the Postgres extended-protocol bind limit: parameter counts
// travel in a uint16 message field.
const maxParams = 65535

// maxRowsPerExec returns how many rows fit in one statement without
// overflowing the bind limit.
func maxRowsPerExec(cols int) int {
	if cols <= 0 {
		return 0
	}
	return maxParams / cols
}

// BulkUpdate updates rows of cfg.Table from a literal VALUES table joined by
// the key columns. The statements run on the supplied transaction so the
// caller controls session settings and commit; value lists too wide for the
// protocol's bind limit are split across statements inside that transaction.
func BulkUpdate(ctx context.Context, tx pgx.Tx, cfg UpdateConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	if len(cfg.KeyCols) == 0 {
		return 0, eris.New("db: update: no key columns specified")
	}
	if len(cfg.SetCols) == 0 {
		return 0, eris.New("db: update: no set columns specified")
	}

	cols := append(append([]string{}, cfg.KeyCols...), cfg.SetCols...)
	if len(cfg.Types) != len(cols) {
		return 0, eris.Wrapf(eris.New("db: update: types do not cover columns"),
			"%d types for %d columns", len(cfg.Types), len(cols))
	}
	for ri, row := range rows {
		if len(row) != len(cols) {
			return 0, eris.Wrapf(eris.New("db: update: row width mismatch"),
				"row %d has %d values, want %d", ri, len(row), len(cols))
		}
	}

	chunk := maxRowsPerExec(len(cols))
	var total int64
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		n, err := execUpdate(ctx, tx, cfg, cols, rows[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func execUpdate(ctx context.Context, tx pgx.Tx, cfg UpdateConfig, cols []string, rows [][]any) (int64, error) {
	// Build the VALUES list. Types are attached to the first tuple only;
	// Postgres propagates them to the rest.
	args := make([]any, 0, len(rows)*len(cols))
	tuples := make([]string, 0, len(rows))
	ph := 1
	for ri, row := range rows {
		parts := make([]string, len(cols))
		for ci := range cols {
			if ri == 0 {
				parts[ci] = fmt.Sprintf("$%d::%s", ph, cfg.Types[ci])
			} else {
				parts[ci] = fmt.Sprintf("$%d", ph)
			}
			ph++
		}
		args = append(args, row...)
		tuples = append(tuples, "("+strings.Join(parts, ", ")+")")
	}

	var setClauses []string
	for _, col := range cfg.SetCols {
		setClauses = append(setClauses, fmt.Sprintf("%s = v.%s",
			pgx.Identifier{col}.Sanitize(), pgx.Identifier{col}.Sanitize()))
	}

	var joinClauses []string
	for _, col := range cfg.KeyCols {
		joinClauses = append(joinClauses, fmt.Sprintf("t.%s = v.%s",
			pgx.Identifier{col}.Sanitize(), pgx.Identifier{col}.Sanitize()))
	}

	sql := fmt.Sprintf(
		"UPDATE %s AS t SET %s FROM (VALUES %s) AS v(%s) WHERE %s",
		sanitizeTable(cfg.Table),
		strings.Join(setClauses, ", "),
		strings.Join(tuples, ", "),
		quoteAndJoin(cols),
		strings.Join(joinClauses, " AND "),
	)

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, eris.Wrapf(err, "db: bulk update %s", cfg.Table)
	}
	return tag.RowsAffected(), nil
}

// sanitizeTable handles schema-qualified table names like "zlv.owners_housing".
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
