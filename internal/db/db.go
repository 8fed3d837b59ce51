// Package db owns the sqlite database handle and schema for the planner.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle so stores can hang off one shared connection.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the planner database at path and ensures the
// schema exists. The carriers table holds the current plan as flat
// interchange records; allocation_log is an append-only audit of commits
// and releases.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS carriers (
			beam_row          INTEGER NOT NULL,
			beam_col          INTEGER NOT NULL,
			channel           INTEGER NOT NULL,
			priority          INTEGER NOT NULL,
			identity          TEXT NOT NULL UNIQUE,
			PRIMARY KEY (beam_row, beam_col, channel)
		);
		CREATE TABLE IF NOT EXISTS allocation_log (
			log_id            INTEGER PRIMARY KEY AUTOINCREMENT,
			event             TEXT NOT NULL,
			beam_row          INTEGER NOT NULL,
			beam_col          INTEGER NOT NULL,
			channel           INTEGER NOT NULL,
			priority          INTEGER,
			identity          TEXT NOT NULL,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{sqlDB}, nil
}
