package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// WAL keeps reads open while a write is in flight; foreign keys are
	// off by default in SQLite.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		address TEXT,
		city TEXT,
		state TEXT,
		zip_code TEXT,
		birthday TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS numbers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		value INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_numbers_user_id ON numbers(user_id);

	CREATE TABLE IF NOT EXISTS user_bindings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		external_id TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, type)
	);
	CREATE INDEX IF NOT EXISTS idx_user_bindings_external ON user_bindings(type, external_id);

	-- user_id here is the external (Lucra) user id, not users.id.
	CREATE TABLE IF NOT EXISTS lucra_matchups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		matchup_id TEXT NOT NULL,
		group_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		number_id INTEGER REFERENCES numbers(id),
		completed_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(matchup_id, group_id, user_id)
	);
	CREATE INDEX IF NOT EXISTS idx_lucra_matchups_matchup_id ON lucra_matchups(matchup_id);
	CREATE INDEX IF NOT EXISTS idx_lucra_matchups_user_id ON lucra_matchups(user_id);

	CREATE TABLE IF NOT EXISTS lucra_webhooks (
		id TEXT NOT NULL PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
