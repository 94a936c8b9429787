package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"
)

// Schema mirrors the build history migrations for fast in-memory tests.
const Schema = `
CREATE TABLE build_history (
	id TEXT PRIMARY KEY,
	rig_name TEXT NOT NULL,
	rig_file TEXT NOT NULL DEFAULT '',
	version REAL NOT NULL,
	action TEXT NOT NULL,
	built INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	document TEXT NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (unixepoch() * 1000)
);

CREATE INDEX idx_build_history_rig ON build_history(rig_name, created_at);
`

// NewTestDB creates an in-memory SQLite database with the history schema.
// The database is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Each pooled connection would get its own empty :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}
