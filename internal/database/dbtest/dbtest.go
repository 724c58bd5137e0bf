// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/projecttracker/internal/database"
)

// Open returns a migrated in-memory SQLite database that is closed when the
// test ends.
func Open(t testing.TB) *database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	return OpenWith(t, database.Config{Driver: "sqlite3", Path: dsn})
}

// OpenWith connects with cfg, runs the migration and registers cleanup.
func OpenWith(t testing.TB, cfg database.Config) *database.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}
