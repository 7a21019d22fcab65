// Package store provides the SQLite-backed local store: per-entity record
// partitions with timestamp and parent indexes, plus the durable sync queue.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	kind        TEXT NOT NULL,
	id          TEXT NOT NULL,
	parent      TEXT NOT NULL DEFAULT '',
	updated_at  INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	data        TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (kind, id)
);

CREATE INDEX IF NOT EXISTS idx_records_updated ON records(kind, updated_at);
CREATE INDEX IF NOT EXISTS idx_records_parent  ON records(kind, parent);

CREATE TABLE IF NOT EXISTS sync_queue (
	id        TEXT PRIMARY KEY,
	entity    TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	operation TEXT NOT NULL,
	payload   TEXT NOT NULL DEFAULT '{}',
	timestamp INTEGER NOT NULL,
	retries   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_queue_timestamp ON sync_queue(timestamp);
`

// DB wraps a sql.DB with store-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
