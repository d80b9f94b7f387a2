package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot-io/stockpilot/internal/config"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "test.db")
	cfg.Database.WALMode = true
	cfg.Database.MaxRetries = 1
	cfg.Database.RetryDelay = 1

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "sessions", "products"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "test.db")
	cfg.Database.MaxRetries = 1
	cfg.Database.RetryDelay = 1

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	// Open already migrated; running again must not fail
	require.NoError(t, Migrate(db))
}
