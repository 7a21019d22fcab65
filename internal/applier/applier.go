// Package applier implements the optimistic mutation flow: state first, then
// the durable pending record and queue item, then a best-effort remote fast
// path whose failures are swallowed. Callers always get the optimistic result.
package applier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/remote"
	"github.com/cortex-os/cortex/internal/store"
)

// Applier owns every local mutation. It is safe for concurrent use; the state
// container serializes the in-memory side and SQLite the durable side.
type Applier struct {
	store  store.Store
	remote remote.Client
	state  *appstate.Container
	log    *slog.Logger

	now   func() time.Time
	newID func() string
}

// New builds an applier over the session's store, remote client, and state.
func New(st store.Store, rc remote.Client, state *appstate.Container, log *slog.Logger) *Applier {
	return &Applier{
		store:  st,
		remote: rc,
		state:  state,
		log:    log,
		now:    time.Now,
		newID:  func() string { return models.TempIDPrefix + uuid.NewString() },
	}
}

// persistPending writes the entity's durable record with pending status and
// appends the matching queue item. The in-memory state must already reflect
// the mutation.
func (a *Applier) persistPending(kind models.EntityKind, id string, entity any, op models.Operation, payload any) error {
	updatedAt := a.now().UnixMilli()

	if op == models.OpDelete {
		if err := a.store.Delete(kind, id); err != nil {
			return fmt.Errorf("applier: delete %s %s: %w", kind, id, err)
		}
	} else {
		rec, err := recordFor(kind, id, entity, updatedAt, models.StatusPending)
		if err != nil {
			return err
		}
		if err := a.store.Put(rec); err != nil {
			return fmt.Errorf("applier: persist %s %s: %w", kind, id, err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("applier: encode payload for %s %s: %w", kind, id, err)
	}
	if _, err := a.store.Enqueue(models.SyncQueueItem{
		Entity:    kind,
		EntityID:  id,
		Operation: op,
		Payload:   body,
		Timestamp: updatedAt,
	}); err != nil {
		return fmt.Errorf("applier: enqueue %s %s: %w", kind, id, err)
	}
	a.state.AddPending(1)
	return nil
}

// fastPath attempts the remote call immediately when online. Errors are
// logged and swallowed; the queued item covers recovery. On a successful
// create the provisional id is swapped for the authoritative one in the store
// and the state container in that order, both sides landing on synced.
func (a *Applier) fastPath(ctx context.Context, kind models.EntityKind, id string, op models.Operation, entity any, payload any) string {
	if a.remote == nil || !a.state.Online() {
		return id
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return id
	}

	switch op {
	case models.OpCreate:
		res, err := a.remote.Create(ctx, kind, body)
		if err != nil {
			a.log.Warn("fast path create failed, queued for drain",
				"entity", kind, "id", id, "error", err)
			return id
		}
		if err := a.renameLocal(kind, id, res.ID, entity); err != nil {
			a.log.Warn("fast path rename failed", "entity", kind, "id", id, "error", err)
			return id
		}
		return res.ID
	case models.OpUpdate:
		if err := a.remote.Update(ctx, kind, id, body); err != nil {
			a.log.Warn("fast path update failed, queued for drain",
				"entity", kind, "id", id, "error", err)
			return id
		}
		a.markSynced(kind, id)
	case models.OpDelete:
		if err := a.remote.Delete(ctx, kind, id); err != nil {
			a.log.Warn("fast path delete failed, queued for drain",
				"entity", kind, "id", id, "error", err)
		}
	}
	return id
}

// renameLocal is phase two of the id hand-off: one store transaction swaps the
// durable record, then one critical section swaps the cached entity and every
// index that references it.
func (a *Applier) renameLocal(kind models.EntityKind, oldID, newID string, entity any) error {
	rec, err := recordFor(kind, newID, entity, a.now().UnixMilli(), models.StatusSynced)
	if err != nil {
		return err
	}
	if err := a.store.Rename(kind, oldID, rec); err != nil {
		return err
	}
	a.state.Rename(kind, oldID, newID)
	return nil
}

func (a *Applier) markSynced(kind models.EntityKind, id string) {
	if err := store.SetRecordStatus(a.store, kind, id, models.StatusSynced); err != nil {
		a.log.Warn("mark synced failed", "entity", kind, "id", id, "error", err)
		return
	}
	a.state.SetSyncStatus(kind, id, models.StatusSynced)
}

// recordFor rebuilds a durable record for an entity under a (possibly new) id
// and status, keeping the encoded body consistent with the indexed columns.
func recordFor(kind models.EntityKind, id string, entity any, updatedAt int64, status models.SyncStatus) (store.Record, error) {
	parent := ""
	switch v := entity.(type) {
	case models.Task:
		v.ID = id
		v.SyncStatus = status
		if v.ParentID != nil {
			parent = *v.ParentID
		}
		entity = v
	case models.HabitEntry:
		v.ID = id
		v.SyncStatus = status
		parent = v.HabitID
		entity = v
	case models.Note:
		v.ID = id
		v.SyncStatus = status
		entity = v
	case models.Habit:
		v.ID = id
		v.SyncStatus = status
		entity = v
	case models.Decision:
		v.ID = id
		v.SyncStatus = status
		entity = v
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return store.Record{}, fmt.Errorf("applier: encode %s %s: %w", kind, id, err)
	}
	return store.Record{
		Kind:       kind,
		ID:         id,
		Parent:     parent,
		UpdatedAt:  updatedAt,
		SyncStatus: status,
		Data:       data,
	}, nil
}
