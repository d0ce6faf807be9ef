package locprop

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func migrationFileNames(t *testing.T) []string {
	t.Helper()
	entries, err := fs.ReadDir(migrationFS, "migrations")
	require.NoError(t, err)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// expectMigrationTx adds the expectations shared by every migration run: the
// transaction open and the transaction-scoped advisory lock on it.
func expectMigrationTx(mock pgxmock.PgxPoolIface) {
	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

func TestMigrate_FreshDB(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	names := migrationFileNames(t)

	expectMigrationTx(mock)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"filename"}))

	for _, name := range names {
		mock.ExpectExec(".*").WillReturnResult(pgxmock.NewResult("EXEC", 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs(name).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	err = Migrate(context.Background(), mock)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_AllAlreadyApplied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectMigrationTx(mock)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	appliedRows := pgxmock.NewRows([]string{"filename"})
	for _, name := range migrationFileNames(t) {
		appliedRows.AddRow(name)
	}
	mock.ExpectQuery("SELECT filename FROM schema_migrations").WillReturnRows(appliedRows)
	mock.ExpectCommit()
	mock.ExpectRollback()

	err = Migrate(context.Background(), mock)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_ExecMigrationErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	require.NotEmpty(t, migrationFileNames(t))

	expectMigrationTx(mock)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"filename"}))
	mock.ExpectExec(".*").WillReturnError(fmt.Errorf("syntax error"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply migration")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_AdvisoryLockError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnError(fmt.Errorf("could not obtain lock"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire migration advisory lock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(fmt.Errorf("pool exhausted"))

	err = Migrate(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin migration transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppliedMigrations_WithEntries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"filename"}).
		AddRow("0001_init.sql")
	mock.ExpectQuery("SELECT filename FROM schema_migrations").WillReturnRows(rows)

	applied, err := appliedMigrations(context.Background(), mock)
	assert.NoError(t, err)
	assert.True(t, applied["0001_init.sql"])
	assert.False(t, applied["0002_missing.sql"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
