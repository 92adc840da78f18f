package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/paddock/internal/database"
	testhelpers "github.com/aristath/paddock/internal/testing"
)

func TestCustomSchemaIsApplied(t *testing.T) {
	db, cleanup := testhelpers.NewTestDBWithSchema(t, "scratch", `
		CREATE TABLE notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			body TEXT NOT NULL
		);
	`)
	defer cleanup()

	_, err := db.Conn().Exec("INSERT INTO notes (body) VALUES (?)", "hello")
	require.NoError(t, err)

	var body string
	require.NoError(t, db.Conn().QueryRow("SELECT body FROM notes WHERE id = 1").Scan(&body))
	assert.Equal(t, "hello", body)
}

func TestMigrateUnknownNameIsNoOp(t *testing.T) {
	// Migrate only knows the four application databases; anything else is
	// left untouched rather than failing.
	db, cleanup := testhelpers.NewTestDBWithSchema(t, "scratch", "")
	defer cleanup()

	assert.NoError(t, db.Migrate())
}

func TestMigrateCreatesApplicationTables(t *testing.T) {
	db, cleanup := testhelpers.NewTestDB(t, "history")
	defer cleanup()

	var count int64
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM history").Scan(&count))
	assert.Equal(t, int64(0), count)
}

func TestCheckpointFlushesWal(t *testing.T) {
	db, cleanup := testhelpers.NewTestDBWithSchema(t, "scratch", `
		CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL);
	`)
	defer cleanup()

	for i := 0; i < 50; i++ {
		_, err := db.Conn().Exec("INSERT OR REPLACE INTO kv (k, v) VALUES (?, ?)", "key", "value")
		require.NoError(t, err)
	}

	assert.NoError(t, db.Checkpoint())
}

func TestProfileIsReported(t *testing.T) {
	db, cleanup := testhelpers.NewTestDB(t, "cache")
	defer cleanup()

	assert.Equal(t, database.ProfileStandard, db.Profile())
	assert.Equal(t, "cache", db.Name())
}
