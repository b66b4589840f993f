package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB stores the translation history
type DB struct {
	conn *sql.DB
}

// Open opens clipslate.db in dir and initializes the schema
func Open(configDir string) (*DB, error) {
	dbPath := filepath.Join(configDir, "clipslate.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// A single connection serialises writers from the agent and the web API
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database schema
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		-- Backend and languages as requested
		backend TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,

		-- Text
		source_text TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		character_count INTEGER NOT NULL,

		-- Timing
		latency_ms INTEGER NOT NULL,

		-- Status
		success BOOLEAN NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_translations_timestamp ON translations(timestamp);
	CREATE INDEX IF NOT EXISTS idx_translations_backend ON translations(backend);
	CREATE INDEX IF NOT EXISTS idx_translations_success ON translations(success);
	`

	_, err := db.conn.Exec(schema)
	return err
}
