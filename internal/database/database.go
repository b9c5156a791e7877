// Package database persists issued certificates and the verification audit
// trail in SQLite.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Database manages SQLite operations
type Database struct {
	db   *sql.DB
	path string
}

// New creates a new database instance backed by the file at path.
func New(path string) *Database {
	if path == "" {
		path = "./data/webidtls.db"
	}
	return &Database{path: path}
}

// Initialize opens the database and creates tables.
func (d *Database) Initialize() error {
	if dir := filepath.Dir(d.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", d.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	d.db = db

	if err := d.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("Database initialized", "path", d.path)
	return nil
}

// createTables creates all necessary tables
func (d *Database) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS issued_certificates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			serial TEXT UNIQUE NOT NULL,
			agent TEXT NOT NULL,
			common_name TEXT NOT NULL,
			pem TEXT NOT NULL,
			issued_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS verification_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			webid TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
