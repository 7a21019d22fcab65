package api

import (
	"github.com/cortex-os/cortex/internal/applier"
	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/scoring"
	"github.com/cortex-os/cortex/internal/syncengine"
)

// Request bodies are the applier's validated inputs; the API layer adds no
// shape of its own on the write path.
type (
	CreateNoteRequest     = applier.NoteInput
	UpdateNoteRequest     = applier.NoteUpdate
	CreateTaskRequest     = applier.TaskInput
	UpdateTaskRequest     = applier.TaskUpdate
	CreateHabitRequest    = applier.HabitInput
	LogEntryRequest       = applier.EntryInput
	CreateDecisionRequest = applier.DecisionInput
	OutcomeRequest        = applier.OutcomeInput
)

// SetOnlineRequest is the manual connectivity override body.
type SetOnlineRequest struct {
	Online bool `json:"online"`
}

// SyncResult is the drain summary returned by POST /api/sync.
type SyncResult = syncengine.Result

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// TaskListResponse wraps flat task listings.
type TaskListResponse struct {
	Tasks []models.Task `json:"tasks" validate:"required"`
	Total int           `json:"total" example:"17" validate:"required"`
}

// HabitListResponse wraps habit listings.
type HabitListResponse struct {
	Habits []models.Habit `json:"habits" validate:"required"`
	Total  int            `json:"total" example:"5" validate:"required"`
}

// DecisionListResponse wraps decision listings.
type DecisionListResponse struct {
	Decisions []models.Decision `json:"decisions" validate:"required"`
	Total     int               `json:"total" example:"9" validate:"required"`
}

// RecalculateResponse reports a bulk priority recomputation.
type RecalculateResponse struct {
	Changed int `json:"changed" example:"3" validate:"required"`
}

// PatternsResponse wraps a habit's detected failure patterns.
type PatternsResponse struct {
	Patterns []scoring.FailurePattern `json:"patterns" validate:"required"`
}

// BiasesResponse wraps a decision's detected biases.
type BiasesResponse struct {
	Biases []scoring.CognitiveBias `json:"biases" validate:"required"`
}
