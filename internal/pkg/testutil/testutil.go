// Package testutil opens throwaway SQLite stores for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yigit/unirecords/internal/config"
	"github.com/yigit/unirecords/internal/db"
)

// Config returns a sqlite configuration pointing at a fresh file in the
// test's temporary directory.
func Config(t testing.TB) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "university.db")
	cfg.Database.MaxOpenConns = 4
	cfg.Database.MaxIdleConns = 2
	return cfg
}

// NewDatabase opens an empty sqlite database that is closed when the test
// ends.
func NewDatabase(t testing.TB) *db.Database {
	t.Helper()
	database, err := db.Open(Config(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}
