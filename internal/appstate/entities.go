package appstate

import (
	"sort"

	"github.com/cortex-os/cortex/internal/models"
)

// PutNote inserts or replaces a note.
func (c *Container) PutNote(n models.Note) {
	c.mu.Lock()
	c.notes[n.ID] = n
	c.mu.Unlock()
}

// Note returns a note by id.
func (c *Container) Note(id string) (models.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.notes[id]
	return n, ok
}

// DeleteNote removes a note from the cache.
func (c *Container) DeleteNote(id string) {
	c.mu.Lock()
	delete(c.notes, id)
	c.mu.Unlock()
}

// Notes returns every cached note, most recently updated first.
func (c *Container) Notes() []models.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Note, 0, len(c.notes))
	for _, n := range c.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PutHabit inserts or replaces a habit.
func (c *Container) PutHabit(h models.Habit) {
	c.mu.Lock()
	c.habits[h.ID] = h
	c.mu.Unlock()
}

// Habit returns a habit by id.
func (c *Container) Habit(id string) (models.Habit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.habits[id]
	return h, ok
}

// DeleteHabit removes a habit from the cache. Its logged entries are kept;
// archive never destroys history.
func (c *Container) DeleteHabit(id string) {
	c.mu.Lock()
	delete(c.habits, id)
	c.mu.Unlock()
}

// Habits returns every cached habit ordered by name.
func (c *Container) Habits() []models.Habit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Habit, 0, len(c.habits))
	for _, h := range c.habits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PutEntry inserts or replaces a habit entry, keeping the per-habit index
// consistent.
func (c *Container) PutEntry(e models.HabitEntry) {
	c.mu.Lock()
	c.putEntryLocked(e)
	c.mu.Unlock()
}

func (c *Container) putEntryLocked(e models.HabitEntry) {
	if prev, ok := c.entries[e.ID]; ok && prev.HabitID != e.HabitID {
		c.byHabit[prev.HabitID] = removeID(c.byHabit[prev.HabitID], e.ID)
	}
	if !containsID(c.byHabit[e.HabitID], e.ID) {
		c.byHabit[e.HabitID] = append(c.byHabit[e.HabitID], e.ID)
	}
	c.entries[e.ID] = e
}

// EntriesForHabit returns a habit's entries ordered by date ascending.
func (c *Container) EntriesForHabit(habitID string) []models.HabitEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.byHabit[habitID]
	out := make([]models.HabitEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.entries[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PutDecision inserts or replaces a decision.
func (c *Container) PutDecision(d models.Decision) {
	c.mu.Lock()
	c.decisions[d.ID] = d
	c.mu.Unlock()
}

// Decision returns a decision by id.
func (c *Container) Decision(id string) (models.Decision, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.decisions[id]
	return d, ok
}

// Decisions returns every cached decision, most recently created first.
func (c *Container) Decisions() []models.Decision {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Decision, 0, len(c.decisions))
	for _, d := range c.decisions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
