package applier

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cortex-os/cortex/internal/models"
)

// NoteInput is the payload for creating a note.
type NoteInput struct {
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Markdown string       `json:"markdown"`
	Tags     []models.Tag `json:"tags,omitempty"`
}

// Validate validates a note create.
func (in *NoteInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 500)),
	)
}

// NoteUpdate is a partial note update; nil fields are left unchanged.
type NoteUpdate struct {
	Title    *string      `json:"title,omitempty"`
	Content  *string      `json:"content,omitempty"`
	Markdown *string      `json:"markdown,omitempty"`
	Tags     []models.Tag `json:"tags,omitempty"`
}

// Validate validates a note update.
func (in *NoteUpdate) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, 500)),
	)
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title            string  `json:"title"`
	Description      *string `json:"description,omitempty"`
	ParentID         *string `json:"parentId,omitempty"`
	Position         int     `json:"position"`
	DueDate          *int64  `json:"dueDate,omitempty"`
	EstimatedMinutes *int    `json:"estimatedMinutes,omitempty"`
}

// Validate validates a task create.
func (in *TaskInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&in.Position, validation.Min(0)),
		validation.Field(&in.EstimatedMinutes, validation.Min(1)),
	)
}

// TaskUpdate is a partial task update; nil fields are left unchanged.
type TaskUpdate struct {
	Title            *string            `json:"title,omitempty"`
	Description      *string            `json:"description,omitempty"`
	Status           *models.TaskStatus `json:"status,omitempty"`
	ParentID         *string            `json:"parentId,omitempty"`
	Position         *int               `json:"position,omitempty"`
	DueDate          *int64             `json:"dueDate,omitempty"`
	EstimatedMinutes *int               `json:"estimatedMinutes,omitempty"`
}

// Validate validates a task update.
func (in *TaskUpdate) Validate() error {
	if in.Status != nil && !in.Status.Valid() {
		return validation.NewError("validation_task_status", "unknown task status")
	}
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, 500)),
		validation.Field(&in.Position, validation.Min(0)),
		validation.Field(&in.EstimatedMinutes, validation.Min(1)),
	)
}

// HabitInput is the payload for creating a habit.
type HabitInput struct {
	Name        string `json:"name"`
	Frequency   string `json:"frequency"`
	TargetCount int    `json:"targetCount"`
}

// Validate validates a habit create.
func (in *HabitInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Frequency, validation.Required, validation.In("daily", "weekly")),
		validation.Field(&in.TargetCount, validation.Min(1)),
	)
}

// EntryInput is the payload for logging one habit day.
type EntryInput struct {
	HabitID   string `json:"habitId"`
	Date      int64  `json:"date"`
	Completed bool   `json:"completed"`
	Count     int    `json:"count"`
}

// Validate validates an entry log.
func (in *EntryInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.HabitID, validation.Required),
		validation.Field(&in.Date, validation.Required, validation.Min(1)),
		validation.Field(&in.Count, validation.Min(0)),
	)
}

// DecisionInput is the payload for recording a decision.
type DecisionInput struct {
	Title           string  `json:"title"`
	Context         string  `json:"context"`
	ChosenOption    string  `json:"chosenOption"`
	Reasoning       string  `json:"reasoning"`
	ExpectedOutcome string  `json:"expectedOutcome"`
	EmotionalState  *string `json:"emotionalState,omitempty"`
	CognitiveLoad   *int    `json:"cognitiveLoad,omitempty"`
	ConfidenceLevel *int    `json:"confidenceLevel,omitempty"`
}

// Validate validates a decision create.
func (in *DecisionInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&in.ChosenOption, validation.Required),
		validation.Field(&in.Reasoning, validation.Required),
		validation.Field(&in.CognitiveLoad, validation.Min(1), validation.Max(10)),
		validation.Field(&in.ConfidenceLevel, validation.Min(1), validation.Max(10)),
	)
}

// OutcomeInput records the observed result of a past decision.
type OutcomeInput struct {
	ActualOutcome  string  `json:"actualOutcome"`
	EmotionalState *string `json:"emotionalState,omitempty"`
}

// Validate validates an outcome update.
func (in *OutcomeInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.ActualOutcome, validation.Required),
	)
}
