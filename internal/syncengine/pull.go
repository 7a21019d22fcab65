package syncengine

import (
	"context"
	"encoding/json"

	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/store"
)

// PullLatestData overwrites local copies with the authoritative remote lists.
// It only runs while online; every failure is logged, never propagated.
// Records are written with the remote's own timestamps, so replaying the same
// pull leaves them byte-identical.
func (e *Engine) PullLatestData(ctx context.Context) {
	if e.remote == nil || !e.state.Online() {
		return
	}

	notes, err := e.remote.ListNotes(ctx, e.pullLimit)
	if err != nil {
		e.log.Warn("pull notes failed", "error", err)
	} else {
		for _, n := range notes {
			n.SyncStatus = models.StatusSynced
			data, err := json.Marshal(n)
			if err != nil {
				e.log.Warn("pull encode note failed", "id", n.ID, "error", err)
				continue
			}
			rec := store.Record{
				Kind:       models.KindNote,
				ID:         n.ID,
				UpdatedAt:  n.UpdatedAt,
				SyncStatus: models.StatusSynced,
				Data:       data,
			}
			if err := e.store.Put(rec); err != nil {
				e.log.Warn("pull persist note failed", "id", n.ID, "error", err)
				continue
			}
			e.state.PutNote(n)
		}
		e.log.Debug("pulled notes", "count", len(notes))
	}

	nodes, err := e.remote.TaskTree(ctx)
	if err != nil {
		e.log.Warn("pull tasks failed", "error", err)
		return
	}
	count := 0
	for _, node := range nodes {
		count += e.pullTaskSubtree(node)
	}
	e.log.Debug("pulled tasks", "count", count)
}

func (e *Engine) pullTaskSubtree(node models.TaskNode) int {
	t := node.Task
	t.SyncStatus = models.StatusSynced

	count := 0
	data, err := json.Marshal(t)
	if err != nil {
		e.log.Warn("pull encode task failed", "id", t.ID, "error", err)
	} else {
		parent := ""
		if t.ParentID != nil {
			parent = *t.ParentID
		}
		rec := store.Record{
			Kind:       models.KindTask,
			ID:         t.ID,
			Parent:     parent,
			UpdatedAt:  t.UpdatedAt,
			SyncStatus: models.StatusSynced,
			Data:       data,
		}
		if err := e.store.Put(rec); err != nil {
			e.log.Warn("pull persist task failed", "id", t.ID, "error", err)
		} else {
			e.state.PutTask(t)
			count++
		}
	}

	for _, child := range node.Children {
		count += e.pullTaskSubtree(child)
	}
	return count
}
