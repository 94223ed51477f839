// ABOUTME: Opens the leadflow SQLite database that backs the record store
// ABOUTME: WAL journal, busy timeout, one connection, and schema setup on open
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// BusyTimeoutMillis is how long SQLite waits on a locked database before a
// write surfaces as a transient store error.
const BusyTimeoutMillis = 5000

func dsn(path string) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", path, BusyTimeoutMillis)
}

// OpenDatabase opens (creating if needed) the database at path and makes sure
// the contacts, companies, deals, activities, and settings tables exist.
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Scoring fan-out shares this handle; one connection keeps writers serialized.
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
