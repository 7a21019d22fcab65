package applier

import (
	"context"
	"time"

	"github.com/cortex-os/cortex/internal/apperr"
	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/scoring"
)

// CreateTask applies a task create optimistically. A referenced parent must
// exist locally.
func (a *Applier) CreateTask(ctx context.Context, in TaskInput) (models.Task, error) {
	if err := in.Validate(); err != nil {
		return models.Task{}, err
	}
	if in.ParentID != nil {
		if _, ok := a.state.Task(*in.ParentID); !ok {
			return models.Task{}, apperr.ErrNotFound
		}
	}

	nowMs := a.now().UnixMilli()
	t := models.Task{
		ID:               a.newID(),
		Title:            in.Title,
		Description:      in.Description,
		Status:           models.TaskTodo,
		ParentID:         in.ParentID,
		Position:         in.Position,
		DueDate:          in.DueDate,
		EstimatedMinutes: in.EstimatedMinutes,
		CreatedAt:        nowMs,
		UpdatedAt:        nowMs,
		SyncStatus:       models.StatusPending,
	}
	a.state.PutTask(t)

	if err := a.persistPending(models.KindTask, t.ID, t, models.OpCreate, in); err != nil {
		return models.Task{}, err
	}

	if id := a.fastPath(ctx, models.KindTask, t.ID, models.OpCreate, t, in); id != t.ID {
		t.ID = id
		t.SyncStatus = models.StatusSynced
	}
	return t, nil
}

// UpdateTask applies a partial task update. Reparenting onto a descendant is
// rejected; it would detach the subtree from every root.
func (a *Applier) UpdateTask(ctx context.Context, id string, in TaskUpdate) (models.Task, error) {
	if err := in.Validate(); err != nil {
		return models.Task{}, err
	}
	t, ok := a.state.Task(id)
	if !ok {
		return models.Task{}, apperr.ErrNotFound
	}
	if in.ParentID != nil {
		if err := a.checkReparent(id, *in.ParentID); err != nil {
			return models.Task{}, err
		}
		t.ParentID = in.ParentID
	}

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Position != nil {
		t.Position = *in.Position
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.EstimatedMinutes != nil {
		t.EstimatedMinutes = in.EstimatedMinutes
	}
	t.UpdatedAt = a.now().UnixMilli()
	t.SyncStatus = models.StatusPending
	a.state.PutTask(t)

	if err := a.persistPending(models.KindTask, id, t, models.OpUpdate, in); err != nil {
		return models.Task{}, err
	}
	a.fastPath(ctx, models.KindTask, id, models.OpUpdate, t, in)
	if synced, ok := a.state.Task(id); ok {
		t = synced
	}
	return t, nil
}

// CompleteTask marks a task completed.
func (a *Applier) CompleteTask(ctx context.Context, id string) (models.Task, error) {
	status := models.TaskCompleted
	return a.UpdateTask(ctx, id, TaskUpdate{Status: &status})
}

// DeleteTask removes a task. Children are detached to the root level, both in
// memory and in their durable records; they are never cascade-deleted.
func (a *Applier) DeleteTask(ctx context.Context, id string) error {
	if _, ok := a.state.Task(id); !ok {
		return apperr.ErrNotFound
	}

	detached := a.state.ChildTasks(id)
	a.state.DeleteTask(id)
	for _, child := range detached {
		child.ParentID = nil
		rec, err := recordFor(models.KindTask, child.ID, child, child.UpdatedAt, child.SyncStatus)
		if err != nil {
			return err
		}
		if err := a.store.Put(rec); err != nil {
			a.log.Warn("detach persist failed", "task", child.ID, "error", err)
		}
	}

	if err := a.persistPending(models.KindTask, id, nil, models.OpDelete, struct{}{}); err != nil {
		return err
	}
	a.fastPath(ctx, models.KindTask, id, models.OpDelete, nil, struct{}{})
	return nil
}

func (a *Applier) checkReparent(id, parentID string) error {
	if parentID == id {
		return apperr.ErrInvalidInput
	}
	cur := parentID
	for cur != "" {
		t, ok := a.state.Task(cur)
		if !ok {
			return apperr.ErrNotFound
		}
		if t.ID == id {
			return apperr.ErrInvalidInput
		}
		if t.ParentID == nil {
			break
		}
		cur = *t.ParentID
	}
	return nil
}

// RecalculateAllPriorities rescores every non-terminal task from a consistent
// snapshot and persists changed scores locally. Priority is derivable, so no
// queue items are produced. It returns the number of tasks whose score moved.
func (a *Applier) RecalculateAllPriorities(now time.Time) (int, error) {
	changed := 0
	for _, t := range a.state.Tasks() {
		if t.Status.Terminal() {
			continue
		}
		active := a.state.ActiveChildren(t.ID)
		score := scoring.CalculatePriority(t, active, active, now)
		if score.Total == t.Priority {
			continue
		}
		t.Priority = score.Total
		a.state.PutTask(t)
		rec, err := recordFor(models.KindTask, t.ID, t, t.UpdatedAt, t.SyncStatus)
		if err != nil {
			return changed, err
		}
		if err := a.store.Put(rec); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// TaskPriority scores one task from the current snapshot.
func (a *Applier) TaskPriority(id string, now time.Time) (scoring.PriorityScore, error) {
	t, ok := a.state.Task(id)
	if !ok {
		return scoring.PriorityScore{}, apperr.ErrNotFound
	}
	active := a.state.ActiveChildren(id)
	return scoring.CalculatePriority(t, active, active, now), nil
}
