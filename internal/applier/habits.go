package applier

import (
	"context"

	"github.com/cortex-os/cortex/internal/apperr"
	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/scoring"
)

// CreateHabit applies a habit create optimistically.
func (a *Applier) CreateHabit(ctx context.Context, in HabitInput) (models.Habit, error) {
	if err := in.Validate(); err != nil {
		return models.Habit{}, err
	}
	if in.TargetCount == 0 {
		in.TargetCount = 1
	}

	h := models.Habit{
		ID:          a.newID(),
		Name:        in.Name,
		Frequency:   in.Frequency,
		TargetCount: in.TargetCount,
		UpdatedAt:   a.now().UnixMilli(),
		SyncStatus:  models.StatusPending,
	}
	a.state.PutHabit(h)

	if err := a.persistPending(models.KindHabit, h.ID, h, models.OpCreate, in); err != nil {
		return models.Habit{}, err
	}

	if id := a.fastPath(ctx, models.KindHabit, h.ID, models.OpCreate, h, in); id != h.ID {
		h.ID = id
		h.SyncStatus = models.StatusSynced
	}
	return h, nil
}

// ArchiveHabit removes a habit from the active set. Remotely this is an
// archive, not a destructive delete; logged entries stay available for
// historical analysis.
func (a *Applier) ArchiveHabit(ctx context.Context, id string) error {
	if _, ok := a.state.Habit(id); !ok {
		return apperr.ErrNotFound
	}
	a.state.DeleteHabit(id)

	if err := a.persistPending(models.KindHabit, id, nil, models.OpDelete, struct{}{}); err != nil {
		return err
	}
	a.fastPath(ctx, models.KindHabit, id, models.OpDelete, nil, struct{}{})
	return nil
}

// LogHabitEntry records one habit day and refreshes the habit's cached streak
// counters. Streaks are derivable, so the habit update stays local.
func (a *Applier) LogHabitEntry(ctx context.Context, in EntryInput) (models.HabitEntry, error) {
	if err := in.Validate(); err != nil {
		return models.HabitEntry{}, err
	}
	if _, ok := a.state.Habit(in.HabitID); !ok {
		return models.HabitEntry{}, apperr.ErrNotFound
	}
	if in.Count == 0 && in.Completed {
		in.Count = 1
	}

	e := models.HabitEntry{
		ID:         a.newID(),
		HabitID:    in.HabitID,
		Date:       in.Date,
		Completed:  in.Completed,
		Count:      in.Count,
		UpdatedAt:  a.now().UnixMilli(),
		SyncStatus: models.StatusPending,
	}
	a.state.PutEntry(e)
	a.refreshStreak(in.HabitID)

	if err := a.persistPending(models.KindHabitEntry, e.ID, e, models.OpCreate, in); err != nil {
		return models.HabitEntry{}, err
	}

	if id := a.fastPath(ctx, models.KindHabitEntry, e.ID, models.OpCreate, e, in); id != e.ID {
		e.ID = id
		e.SyncStatus = models.StatusSynced
	}
	return e, nil
}

// refreshStreak recomputes a habit's streak counters from its entries and
// persists the habit record locally when they moved.
func (a *Applier) refreshStreak(habitID string) {
	h, ok := a.state.Habit(habitID)
	if !ok {
		return
	}
	streak := scoring.CalculateStreak(a.state.EntriesForHabit(habitID), a.now())
	if h.CurrentStreak == streak.Current && h.LongestStreak == streak.Longest {
		return
	}
	h.CurrentStreak = streak.Current
	h.LongestStreak = streak.Longest
	a.state.PutHabit(h)

	rec, err := recordFor(models.KindHabit, h.ID, h, h.UpdatedAt, h.SyncStatus)
	if err != nil {
		return
	}
	if err := a.store.Put(rec); err != nil {
		a.log.Warn("streak persist failed", "habit", h.ID, "error", err)
	}
}
