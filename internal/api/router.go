package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/cortex-os/cortex/internal/applier"
	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/connectivity"
	"github.com/cortex-os/cortex/internal/sse"
	"github.com/cortex-os/cortex/internal/syncengine"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, receives entity change broadcasts and is mounted at
// GET /events inside the auth group.
func NewRouter(state *appstate.Container, ap *applier.Applier, engine *syncengine.Engine, ctrl *connectivity.Controller, authEnabled bool, token string, events *sse.Broker) chi.Router {
	h := NewHandler(state, ap, engine, ctrl, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Sync and connectivity.
	r.Get("/state", h.GetState)
	r.Post("/state/online", h.SetOnline)
	r.Post("/sync", h.TriggerSync)

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Tasks and priorities.
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/tree", h.TaskTree)
	r.Post("/tasks", h.CreateTask)
	r.Post("/tasks/recalculate", h.RecalculatePriorities)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Post("/tasks/{id}/complete", h.CompleteTask)
	r.Get("/tasks/{id}/priority", h.TaskPriority)

	// Habits, entries, and analysis.
	r.Get("/habits", h.ListHabits)
	r.Post("/habits", h.CreateHabit)
	r.Delete("/habits/{id}", h.ArchiveHabit)
	r.Post("/habits/{id}/entries", h.LogHabitEntry)
	r.Get("/habits/{id}/streak", h.HabitStreak)
	r.Get("/habits/{id}/stats", h.HabitStats)
	r.Get("/habits/{id}/patterns", h.HabitPatterns)

	// Decisions and bias analysis.
	r.Get("/decisions", h.ListDecisions)
	r.Post("/decisions", h.CreateDecision)
	r.Post("/decisions/{id}/outcome", h.RecordOutcome)
	r.Get("/decisions/{id}/biases", h.DecisionBiases)
	r.Get("/decisions/report", h.BiasReport)

	// SSE endpoint (protected by same auth middleware).
	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
