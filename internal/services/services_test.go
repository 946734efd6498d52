package services

import (
	"database/sql"
	"testing"

	"github.com/rngapp/rng-api/internal/database"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// newTestDB returns an in-memory database with the full schema applied.
// The pool is pinned to one connection so every query sees the same
// in-memory store.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// createTestUser inserts a user directly and returns its id.
func createTestUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()

	res, err := db.Exec(
		"INSERT INTO users (full_name, email, password_hash) VALUES (?, ?, ?)",
		"Test User", email, "x",
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// insertNumber inserts a number row with a chosen value and returns its id.
func insertNumber(t *testing.T, db *sql.DB, userID int64, value int) int64 {
	t.Helper()

	res, err := db.Exec(
		"INSERT INTO numbers (user_id, value) VALUES (?, ?)", userID, value,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
