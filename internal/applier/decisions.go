package applier

import (
	"context"

	"github.com/cortex-os/cortex/internal/apperr"
	"github.com/cortex-os/cortex/internal/models"
)

// CreateDecision applies a decision create optimistically.
func (a *Applier) CreateDecision(ctx context.Context, in DecisionInput) (models.Decision, error) {
	if err := in.Validate(); err != nil {
		return models.Decision{}, err
	}

	nowMs := a.now().UnixMilli()
	d := models.Decision{
		ID:              a.newID(),
		Title:           in.Title,
		Context:         in.Context,
		ChosenOption:    in.ChosenOption,
		Reasoning:       in.Reasoning,
		ExpectedOutcome: in.ExpectedOutcome,
		EmotionalState:  in.EmotionalState,
		CognitiveLoad:   in.CognitiveLoad,
		ConfidenceLevel: in.ConfidenceLevel,
		CreatedAt:       nowMs,
		UpdatedAt:       nowMs,
		SyncStatus:      models.StatusPending,
	}
	a.state.PutDecision(d)

	if err := a.persistPending(models.KindDecision, d.ID, d, models.OpCreate, in); err != nil {
		return models.Decision{}, err
	}

	if id := a.fastPath(ctx, models.KindDecision, d.ID, models.OpCreate, d, in); id != d.ID {
		d.ID = id
		d.SyncStatus = models.StatusSynced
	}
	return d, nil
}

// RecordDecisionOutcome attaches the observed result to a past decision. This
// is the only mutation decisions support after creation.
func (a *Applier) RecordDecisionOutcome(ctx context.Context, id string, in OutcomeInput) (models.Decision, error) {
	if err := in.Validate(); err != nil {
		return models.Decision{}, err
	}
	d, ok := a.state.Decision(id)
	if !ok {
		return models.Decision{}, apperr.ErrNotFound
	}

	outcome := in.ActualOutcome
	d.ActualOutcome = &outcome
	if in.EmotionalState != nil {
		d.EmotionalState = in.EmotionalState
	}
	d.UpdatedAt = a.now().UnixMilli()
	d.SyncStatus = models.StatusPending
	a.state.PutDecision(d)

	if err := a.persistPending(models.KindDecision, id, d, models.OpUpdate, in); err != nil {
		return models.Decision{}, err
	}
	a.fastPath(ctx, models.KindDecision, id, models.OpUpdate, d, in)
	if synced, ok := a.state.Decision(id); ok {
		d = synced
	}
	return d, nil
}
