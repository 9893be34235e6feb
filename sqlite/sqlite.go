// Package sqlite provides the SQLite-backed crawl store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS discovered_urls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			raw_url TEXT NOT NULL,
			clean_url TEXT NOT NULL UNIQUE,
			depth INTEGER NOT NULL DEFAULT 0,
			discovered_at TEXT NOT NULL,
			parent_clean_url TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			retry_count INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_discovered_urls_status ON discovered_urls(status);
		CREATE INDEX IF NOT EXISTS idx_discovered_urls_depth ON discovered_urls(depth);

		CREATE TABLE IF NOT EXISTS downloaded_documents (
			clean_url TEXT PRIMARY KEY,
			local_path TEXT NOT NULL,
			file_size INTEGER NOT NULL DEFAULT 0,
			download_time_seconds REAL NOT NULL DEFAULT 0,
			downloaded_at TEXT NOT NULL,
			depth INTEGER NOT NULL DEFAULT 0,
			links_extracted_count INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS downloaded_resources (
			resource_url TEXT PRIMARY KEY,
			local_path TEXT NOT NULL,
			resource_type TEXT NOT NULL DEFAULT 'other',
			file_size INTEGER NOT NULL DEFAULT 0,
			referenced_by TEXT,
			is_shared INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS url_mappings (
			clean_url TEXT PRIMARY KEY,
			local_path TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS wiki_pages (
			page_id TEXT PRIMARY KEY,
			clean_url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			space_key TEXT NOT NULL DEFAULT '',
			space_name TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 0,
			created_when TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL DEFAULT '',
			updated_when TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT '',
			attachment_count INTEGER NOT NULL DEFAULT 0,
			content_char_count INTEGER NOT NULL DEFAULT 0,
			has_tables INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS wiki_attachments (
			attachment_id TEXT PRIMARY KEY,
			page_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			media_type TEXT NOT NULL DEFAULT '',
			file_size INTEGER NOT NULL DEFAULT 0,
			file_size_local INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 0,
			created_when TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL DEFAULT '',
			download_url TEXT NOT NULL DEFAULT '',
			local_path TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_wiki_attachments_page_id ON wiki_attachments(page_id);

		CREATE TABLE IF NOT EXISTS crawl_sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			downloaded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			resources INTEGER NOT NULL DEFAULT 0
		);
	`

	_, err := db.db.Exec(schema)
	return err
}
