package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cortex-os/cortex/internal/models"
)

// Enqueue appends a pending mutation to the durable queue, assigning it a
// fresh id. The caller's id field is ignored.
func (db *DB) Enqueue(item models.SyncQueueItem) (string, error) {
	id := uuid.NewString()
	payload := item.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := db.conn.Exec(`
		INSERT INTO sync_queue (id, entity, entity_id, operation, payload, timestamp, retries)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, string(item.Entity), item.EntityID, string(item.Operation), string(payload), item.Timestamp, item.Retries)
	if err != nil {
		return "", fmt.Errorf("store: enqueue %s/%s: %w", item.Entity, item.EntityID, err)
	}
	return id, nil
}

// QueueByTimestamp returns the full queue in non-decreasing timestamp order.
func (db *DB) QueueByTimestamp() ([]models.SyncQueueItem, error) {
	rows, err := db.conn.Query(`
		SELECT id, entity, entity_id, operation, payload, timestamp, retries
		FROM sync_queue ORDER BY timestamp ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: read queue: %w", err)
	}
	defer rows.Close()

	var out []models.SyncQueueItem
	for rows.Next() {
		var item models.SyncQueueItem
		var entity, op, payload string
		if err := rows.Scan(&item.ID, &entity, &item.EntityID, &op, &payload, &item.Timestamp, &item.Retries); err != nil {
			return nil, err
		}
		item.Entity = models.EntityKind(entity)
		item.Operation = models.Operation(op)
		item.Payload = []byte(payload)
		out = append(out, item)
	}
	return out, rows.Err()
}

// RemoveQueueItem deletes a queue item after a successful sync or once its
// retry budget is exhausted.
func (db *DB) RemoveQueueItem(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: remove queue item %s: %w", id, err)
	}
	return nil
}

// SetQueueRetries persists an incremented retry counter. The item keeps its
// original timestamp, so its position in the drain order is unchanged.
func (db *DB) SetQueueRetries(id string, retries int) error {
	if _, err := db.conn.Exec(`UPDATE sync_queue SET retries = ? WHERE id = ?`, retries, id); err != nil {
		return fmt.Errorf("store: set retries for %s: %w", id, err)
	}
	return nil
}

// QueueLength returns the number of pending queue items.
func (db *DB) QueueLength() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: queue length: %w", err)
	}
	return n, nil
}
