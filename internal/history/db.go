package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the local bookkeeping database for saved targets and past runs.
// The mirror engine itself never reads it; it only informs the CLI.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the history database at the given path
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// modernc.org/sqlite serializes access per connection
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// migrate creates the schema if it does not exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mirror_targets (
		id TEXT PRIMARY KEY,
		local_root TEXT NOT NULL,
		remote_root_id TEXT NOT NULL,
		recursive INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mirror_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created INTEGER NOT NULL,
		updated INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		FOREIGN KEY (target_id) REFERENCES mirror_targets(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_target ON mirror_runs(target_id, started_at DESC);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}
	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
