package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cortex-os/cortex/internal/apperr"
	"github.com/cortex-os/cortex/internal/models"
)

// Put inserts or replaces a record in its partition.
func (db *DB) Put(rec Record) error {
	_, err := db.conn.Exec(`
		INSERT INTO records (kind, id, parent, updated_at, sync_status, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			parent      = excluded.parent,
			updated_at  = excluded.updated_at,
			sync_status = excluded.sync_status,
			data        = excluded.data
	`, string(rec.Kind), rec.ID, rec.Parent, rec.UpdatedAt, string(rec.SyncStatus), string(rec.Data))
	if err != nil {
		return fmt.Errorf("store: put %s/%s: %w", rec.Kind, rec.ID, err)
	}
	return nil
}

// Get returns one record, or apperr.ErrNotFound.
func (db *DB) Get(kind models.EntityKind, id string) (*Record, error) {
	row := db.conn.QueryRow(`
		SELECT parent, updated_at, sync_status, data
		FROM records WHERE kind = ? AND id = ?
	`, string(kind), id)

	rec := Record{Kind: kind, ID: id}
	var status, data string
	if err := row.Scan(&rec.Parent, &rec.UpdatedAt, &status, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get %s/%s: %w", kind, id, err)
	}
	rec.SyncStatus = models.SyncStatus(status)
	rec.Data = []byte(data)
	return &rec, nil
}

// GetAll returns every record in a partition ordered by the updated-at index.
func (db *DB) GetAll(kind models.EntityKind) ([]Record, error) {
	rows, err := db.conn.Query(`
		SELECT id, parent, updated_at, sync_status, data
		FROM records WHERE kind = ? ORDER BY updated_at ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("store: get all %s: %w", kind, err)
	}
	defer rows.Close()
	return scanRecords(kind, rows)
}

// Delete removes a record. Deleting a missing record is a no-op.
func (db *DB) Delete(kind models.EntityKind, id string) error {
	if _, err := db.conn.Exec(`DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), id); err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", kind, id, err)
	}
	return nil
}

// ListByParent returns records in a partition filtered by the parent index,
// ordered by the updated-at index.
func (db *DB) ListByParent(kind models.EntityKind, parent string) ([]Record, error) {
	rows, err := db.conn.Query(`
		SELECT id, parent, updated_at, sync_status, data
		FROM records WHERE kind = ? AND parent = ? ORDER BY updated_at ASC
	`, string(kind), parent)
	if err != nil {
		return nil, fmt.Errorf("store: list %s by parent %s: %w", kind, parent, err)
	}
	defer rows.Close()
	return scanRecords(kind, rows)
}

// Rename replaces the record stored under oldID with rec in one transaction.
// This is the durable half of the temp-id hand-off: no reader observes the
// old id gone without the new one present.
func (db *DB) Rename(kind models.EntityKind, oldID string, rec Record) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin rename tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), oldID); err != nil {
		return fmt.Errorf("store: rename delete %s/%s: %w", kind, oldID, err)
	}
	_, err = tx.Exec(`
		INSERT INTO records (kind, id, parent, updated_at, sync_status, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			parent      = excluded.parent,
			updated_at  = excluded.updated_at,
			sync_status = excluded.sync_status,
			data        = excluded.data
	`, string(rec.Kind), rec.ID, rec.Parent, rec.UpdatedAt, string(rec.SyncStatus), string(rec.Data))
	if err != nil {
		return fmt.Errorf("store: rename insert %s/%s: %w", rec.Kind, rec.ID, err)
	}
	return tx.Commit()
}

func scanRecords(kind models.EntityKind, rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		rec := Record{Kind: kind}
		var status, data string
		if err := rows.Scan(&rec.ID, &rec.Parent, &rec.UpdatedAt, &status, &data); err != nil {
			return nil, err
		}
		rec.SyncStatus = models.SyncStatus(status)
		rec.Data = []byte(data)
		out = append(out, rec)
	}
	return out, rows.Err()
}
