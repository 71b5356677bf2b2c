// Package helper sets up Postgres journals for integration tests.
package helper

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler/postgresjournal"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/testutil/postgresjournal/config"
)

// GivenUniqueTableName returns a table name no other test uses.
func GivenUniqueTableName() string {
	return "journal_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// GivenJournalWithFreshTable creates a journal on the adapter selected by ADAPTER_TYPE, with its own table.
// The test is skipped if the test database is not reachable. The table is dropped when the test ends.
func GivenJournalWithFreshTable(t testing.TB, options ...postgresjournal.Option) *postgresjournal.Journal {
	t.Helper()

	cfg, err := config.LoadTestConfig()
	require.NoError(t, err, "error loading test config")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	tableName := GivenUniqueTableName()
	options = append([]postgresjournal.Option{postgresjournal.WithTableName(tableName)}, options...)

	journal, exec, closeDB := createJournal(t, ctx, cfg, options...)

	if pingErr := journal.Ping(ctx); pingErr != nil {
		closeDB()
		t.Skipf("test database not reachable: %v", pingErr)
	}

	require.NoError(t, journal.CreateTable(ctx), "error creating journal table")

	t.Cleanup(func() {
		dropErr := exec(context.Background(), fmt.Sprintf(`DROP TABLE IF EXISTS %q`, tableName))
		closeDB()
		require.NoError(t, dropErr, "error dropping journal table")
	})

	return journal
}

type execFunc func(ctx context.Context, statement string) error

func createJournal(
	t testing.TB,
	ctx context.Context,
	cfg config.TestConfig,
	options ...postgresjournal.Option,
) (*postgresjournal.Journal, execFunc, func()) {

	switch strings.ToLower(cfg.AdapterType) {
	case config.AdapterTypePGXPool, "":
		pool, err := cfg.PGXPool(ctx)
		require.NoError(t, err, "error creating pgx pool")

		journal, err := postgresjournal.NewJournalFromPGXPool(pool, options...)
		require.NoError(t, err)

		exec := func(ctx context.Context, statement string) error {
			_, execErr := pool.Exec(ctx, statement)
			return execErr
		}

		return journal, exec, pool.Close

	case config.AdapterTypeSQLDB:
		db, err := cfg.SQLDB()
		require.NoError(t, err, "error opening sql.DB")

		journal, err := postgresjournal.NewJournalFromSQLDB(db, options...)
		require.NoError(t, err)

		exec := func(ctx context.Context, statement string) error {
			_, execErr := db.ExecContext(ctx, statement)
			return execErr
		}

		return journal, exec, func() { _ = db.Close() }

	case config.AdapterTypeSQLX:
		db, err := cfg.SQLX()
		require.NoError(t, err, "error opening sqlx.DB")

		journal, err := postgresjournal.NewJournalFromSQLX(db, options...)
		require.NoError(t, err)

		exec := func(ctx context.Context, statement string) error {
			_, execErr := db.ExecContext(ctx, statement)
			return execErr
		}

		return journal, exec, func() { _ = db.Close() }

	default:
		panic(fmt.Sprintf("unsupported adapter type from env: %s", cfg.AdapterType))
	}
}
