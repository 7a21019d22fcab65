package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/scoring"
)

// ListHabits returns all habits sorted by name. Archived habits are not kept
// in state, so only live habits appear.
//
//	@Summary	List habits
//	@Tags		habits
//	@Produce	json
//	@Success	200	{object}	HabitListResponse
//	@Router		/habits [get]
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	habits := h.state.Habits()
	writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits, Total: len(habits)})
}

// CreateHabit records a new habit.
//
//	@Summary	Create habit
//	@Tags		habits
//	@Accept		json
//	@Produce	json
//	@Param		body	body	CreateHabitRequest	true	"habit fields"
//	@Success	201	{object}	models.Habit
//	@Failure	400	{object}	errResponse
//	@Router		/habits [post]
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req CreateHabitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	habit, err := h.applier.CreateHabit(r.Context(), req)
	if err != nil {
		writeError(w, "create habit", err)
		return
	}
	h.publish(models.OpCreate, models.KindHabit, habit.ID)
	writeJSON(w, http.StatusCreated, habit)
}

// ArchiveHabit archives a habit. History entries are kept.
//
//	@Summary	Archive habit
//	@Tags		habits
//	@Param		id	path	string	true	"habit id"
//	@Success	204
//	@Failure	404	{object}	errResponse
//	@Router		/habits/{id} [delete]
func (h *Handler) ArchiveHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.applier.ArchiveHabit(r.Context(), id); err != nil {
		writeError(w, "archive habit", err)
		return
	}
	h.publish(models.OpDelete, models.KindHabit, id)
	w.WriteHeader(http.StatusNoContent)
}

// LogHabitEntry records a completion or miss for a habit.
//
//	@Summary	Log habit entry
//	@Tags		habits
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string			true	"habit id"
//	@Param		body	body	LogEntryRequest	true	"entry fields"
//	@Success	201	{object}	models.HabitEntry
//	@Failure	400	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/habits/{id}/entries [post]
func (h *Handler) LogHabitEntry(w http.ResponseWriter, r *http.Request) {
	var req LogEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.HabitID = chi.URLParam(r, "id")
	entry, err := h.applier.LogHabitEntry(r.Context(), req)
	if err != nil {
		writeError(w, "log habit entry", err)
		return
	}
	h.publish(models.OpCreate, models.KindHabitEntry, entry.ID)
	writeJSON(w, http.StatusCreated, entry)
}

// HabitStreak returns the current and longest streak for a habit.
//
//	@Summary	Habit streak
//	@Tags		habits
//	@Produce	json
//	@Param		id	path	string	true	"habit id"
//	@Success	200	{object}	scoring.StreakData
//	@Failure	404	{object}	errResponse
//	@Router		/habits/{id}/streak [get]
func (h *Handler) HabitStreak(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.state.Habit(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, scoring.CalculateStreak(h.state.EntriesForHabit(id), time.Now()))
}

// HabitStats returns completion statistics over recent windows.
//
//	@Summary	Habit statistics
//	@Tags		habits
//	@Produce	json
//	@Param		id	path	string	true	"habit id"
//	@Success	200	{object}	scoring.HabitStats
//	@Failure	404	{object}	errResponse
//	@Router		/habits/{id}/stats [get]
func (h *Handler) HabitStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.state.Habit(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, scoring.CalculateStats(h.state.EntriesForHabit(id), time.Now()))
}

// HabitPatterns returns detected failure patterns for a habit.
//
//	@Summary	Habit failure patterns
//	@Tags		habits
//	@Produce	json
//	@Param		id	path	string	true	"habit id"
//	@Success	200	{object}	PatternsResponse
//	@Failure	404	{object}	errResponse
//	@Router		/habits/{id}/patterns [get]
func (h *Handler) HabitPatterns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.state.Habit(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	patterns := scoring.AnalyzeHabit(h.state.EntriesForHabit(id))
	writeJSON(w, http.StatusOK, PatternsResponse{Patterns: patterns})
}
