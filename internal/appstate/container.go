// Package appstate holds the in-memory session state: the per-kind entity
// caches, the task arena, and the sync status snapshot. One Container is
// created per session and passed by reference to the components that mutate
// it; every access goes through its mutex.
package appstate

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/store"
)

// Container is the explicit session state.
type Container struct {
	mu sync.RWMutex

	notes     map[string]models.Note
	tasks     map[string]models.Task
	children  map[string][]string // parent task id -> child task ids
	habits    map[string]models.Habit
	entries   map[string]models.HabitEntry
	byHabit   map[string][]string // habit id -> entry ids
	decisions map[string]models.Decision

	online   bool
	syncing  bool
	pending  int
	failed   int
	lastSync *time.Time
}

// New returns an empty container. The session starts offline until the
// connectivity controller reports otherwise.
func New() *Container {
	return &Container{
		notes:     make(map[string]models.Note),
		tasks:     make(map[string]models.Task),
		children:  make(map[string][]string),
		habits:    make(map[string]models.Habit),
		entries:   make(map[string]models.HabitEntry),
		byHabit:   make(map[string][]string),
		decisions: make(map[string]models.Decision),
	}
}

// Hydrate rebuilds every cache from the durable store and reconstructs
// PendingChanges from the actual queue length.
func (c *Container) Hydrate(st store.Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notes = make(map[string]models.Note)
	c.tasks = make(map[string]models.Task)
	c.children = make(map[string][]string)
	c.habits = make(map[string]models.Habit)
	c.entries = make(map[string]models.HabitEntry)
	c.byHabit = make(map[string][]string)
	c.decisions = make(map[string]models.Decision)

	for _, kind := range models.Kinds {
		recs, err := st.GetAll(kind)
		if err != nil {
			return fmt.Errorf("appstate: hydrate %s: %w", kind, err)
		}
		for _, rec := range recs {
			if err := c.decodeLocked(kind, rec.Data); err != nil {
				return fmt.Errorf("appstate: hydrate %s %s: %w", kind, rec.ID, err)
			}
		}
	}

	n, err := st.QueueLength()
	if err != nil {
		return fmt.Errorf("appstate: hydrate queue length: %w", err)
	}
	c.pending = n
	return nil
}

func (c *Container) decodeLocked(kind models.EntityKind, data []byte) error {
	switch kind {
	case models.KindNote:
		var n models.Note
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		c.notes[n.ID] = n
	case models.KindTask:
		var t models.Task
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		c.putTaskLocked(t)
	case models.KindHabit:
		var h models.Habit
		if err := json.Unmarshal(data, &h); err != nil {
			return err
		}
		c.habits[h.ID] = h
	case models.KindHabitEntry:
		var e models.HabitEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		c.putEntryLocked(e)
	case models.KindDecision:
		var d models.Decision
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		c.decisions[d.ID] = d
	default:
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	return nil
}

// TryBeginSync marks the session as syncing. It returns false when a sync is
// already in flight; the caller must not drain the queue in that case.
func (c *Container) TryBeginSync() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.syncing {
		return false
	}
	c.syncing = true
	return true
}

// EndSync clears the syncing flag.
func (c *Container) EndSync() {
	c.mu.Lock()
	c.syncing = false
	c.mu.Unlock()
}

// SetOnline records connectivity and reports whether the value changed.
func (c *Container) SetOnline(online bool) (changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.online == online {
		return false
	}
	c.online = online
	return true
}

// Online reports the last known connectivity.
func (c *Container) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// Syncing reports whether a drain is in flight.
func (c *Container) Syncing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.syncing
}

// SetPending overwrites the pending-changes counter, normally with the
// durable queue length after a drain.
func (c *Container) SetPending(n int) {
	c.mu.Lock()
	c.pending = n
	c.mu.Unlock()
}

// AddPending adjusts the pending-changes counter after an enqueue.
func (c *Container) AddPending(delta int) {
	c.mu.Lock()
	c.pending += delta
	if c.pending < 0 {
		c.pending = 0
	}
	c.mu.Unlock()
}

// SetFailed overwrites the failed-items counter for the latest drain.
func (c *Container) SetFailed(n int) {
	c.mu.Lock()
	c.failed = n
	c.mu.Unlock()
}

// SetLastSync records the completion time of the latest drain.
func (c *Container) SetLastSync(t time.Time) {
	c.mu.Lock()
	c.lastSync = &t
	c.mu.Unlock()
}

// SyncState returns a copy of the current sync status.
func (c *Container) SyncState() models.SyncState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := models.SyncState{
		IsOnline:       c.online,
		IsSyncing:      c.syncing,
		PendingChanges: c.pending,
		FailedItems:    c.failed,
	}
	if c.lastSync != nil {
		t := *c.lastSync
		s.LastSyncAt = &t
	}
	return s
}

// Rename swaps a provisional id for the authoritative one in a single
// critical section, re-keying every index that references it. It reports
// whether the entity was found.
func (c *Container) Rename(kind models.EntityKind, oldID, newID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case models.KindNote:
		n, ok := c.notes[oldID]
		if !ok {
			return false
		}
		delete(c.notes, oldID)
		n.ID = newID
		n.SyncStatus = models.StatusSynced
		c.notes[newID] = n
	case models.KindTask:
		return c.renameTaskLocked(oldID, newID)
	case models.KindHabit:
		h, ok := c.habits[oldID]
		if !ok {
			return false
		}
		delete(c.habits, oldID)
		h.ID = newID
		h.SyncStatus = models.StatusSynced
		c.habits[newID] = h
		if ids, ok := c.byHabit[oldID]; ok {
			delete(c.byHabit, oldID)
			c.byHabit[newID] = ids
			for _, id := range ids {
				e := c.entries[id]
				e.HabitID = newID
				c.entries[id] = e
			}
		}
	case models.KindHabitEntry:
		e, ok := c.entries[oldID]
		if !ok {
			return false
		}
		delete(c.entries, oldID)
		e.ID = newID
		e.SyncStatus = models.StatusSynced
		c.entries[newID] = e
		replaceID(c.byHabit[e.HabitID], oldID, newID)
	case models.KindDecision:
		d, ok := c.decisions[oldID]
		if !ok {
			return false
		}
		delete(c.decisions, oldID)
		d.ID = newID
		d.SyncStatus = models.StatusSynced
		c.decisions[newID] = d
	default:
		return false
	}
	return true
}

// SetSyncStatus rewrites a cached entity's sync status in place. It reports
// whether the entity was found.
func (c *Container) SetSyncStatus(kind models.EntityKind, id string, status models.SyncStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case models.KindNote:
		if n, ok := c.notes[id]; ok {
			n.SyncStatus = status
			c.notes[id] = n
			return true
		}
	case models.KindTask:
		if t, ok := c.tasks[id]; ok {
			t.SyncStatus = status
			c.tasks[id] = t
			return true
		}
	case models.KindHabit:
		if h, ok := c.habits[id]; ok {
			h.SyncStatus = status
			c.habits[id] = h
			return true
		}
	case models.KindHabitEntry:
		if e, ok := c.entries[id]; ok {
			e.SyncStatus = status
			c.entries[id] = e
			return true
		}
	case models.KindDecision:
		if d, ok := c.decisions[id]; ok {
			d.SyncStatus = status
			c.decisions[id] = d
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func replaceID(ids []string, oldID, newID string) {
	for i, v := range ids {
		if v == oldID {
			ids[i] = newID
			return
		}
	}
}
