package applier

import (
	"context"

	"github.com/cortex-os/cortex/internal/apperr"
	"github.com/cortex-os/cortex/internal/models"
)

// CreateNote applies a note create optimistically and returns the materialized
// note. The returned id is authoritative when the fast path landed, otherwise
// provisional.
func (a *Applier) CreateNote(ctx context.Context, in NoteInput) (models.Note, error) {
	if err := in.Validate(); err != nil {
		return models.Note{}, err
	}

	n := models.Note{
		ID:         a.newID(),
		Title:      in.Title,
		Content:    in.Content,
		Markdown:   in.Markdown,
		Tags:       in.Tags,
		UpdatedAt:  a.now().UnixMilli(),
		SyncStatus: models.StatusPending,
	}
	a.state.PutNote(n)

	if err := a.persistPending(models.KindNote, n.ID, n, models.OpCreate, in); err != nil {
		return models.Note{}, err
	}

	if id := a.fastPath(ctx, models.KindNote, n.ID, models.OpCreate, n, in); id != n.ID {
		n.ID = id
		n.SyncStatus = models.StatusSynced
	}
	return n, nil
}

// UpdateNote applies a partial note update.
func (a *Applier) UpdateNote(ctx context.Context, id string, in NoteUpdate) (models.Note, error) {
	if err := in.Validate(); err != nil {
		return models.Note{}, err
	}
	n, ok := a.state.Note(id)
	if !ok {
		return models.Note{}, apperr.ErrNotFound
	}

	if in.Title != nil {
		n.Title = *in.Title
	}
	if in.Content != nil {
		n.Content = *in.Content
	}
	if in.Markdown != nil {
		n.Markdown = *in.Markdown
	}
	if in.Tags != nil {
		n.Tags = in.Tags
	}
	n.UpdatedAt = a.now().UnixMilli()
	n.SyncStatus = models.StatusPending
	a.state.PutNote(n)

	if err := a.persistPending(models.KindNote, id, n, models.OpUpdate, in); err != nil {
		return models.Note{}, err
	}
	a.fastPath(ctx, models.KindNote, id, models.OpUpdate, n, in)
	if synced, ok := a.state.Note(id); ok {
		n = synced
	}
	return n, nil
}

// DeleteNote removes a note locally and queues the remote delete.
func (a *Applier) DeleteNote(ctx context.Context, id string) error {
	if _, ok := a.state.Note(id); !ok {
		return apperr.ErrNotFound
	}
	a.state.DeleteNote(id)

	if err := a.persistPending(models.KindNote, id, nil, models.OpDelete, struct{}{}); err != nil {
		return err
	}
	a.fastPath(ctx, models.KindNote, id, models.OpDelete, nil, struct{}{})
	return nil
}
