package store

import (
	"encoding/json"
	"fmt"

	"github.com/cortex-os/cortex/internal/models"
)

// SetRecordStatus rewrites a record's sync status, keeping the status column
// and the encoded entity body in agreement.
func SetRecordStatus(s Store, kind models.EntityKind, id string, status models.SyncStatus) error {
	rec, err := s.Get(kind, id)
	if err != nil {
		return err
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Data, &body); err != nil {
		return fmt.Errorf("store: decode %s/%s: %w", kind, id, err)
	}
	body["syncStatus"] = string(status)
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", kind, id, err)
	}
	rec.SyncStatus = status
	rec.Data = data
	return s.Put(*rec)
}

// RenameRecord is the durable half of the temp-id hand-off when only the
// authoritative id is known: the stored body is re-keyed and marked synced,
// then swapped in under the new id in one transaction.
func RenameRecord(s Store, kind models.EntityKind, oldID, newID string) error {
	rec, err := s.Get(kind, oldID)
	if err != nil {
		return err
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Data, &body); err != nil {
		return fmt.Errorf("store: decode %s/%s: %w", kind, oldID, err)
	}
	body["id"] = newID
	body["syncStatus"] = string(models.StatusSynced)
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", kind, newID, err)
	}
	rec.ID = newID
	rec.SyncStatus = models.StatusSynced
	rec.Data = data
	return s.Rename(kind, oldID, *rec)
}
