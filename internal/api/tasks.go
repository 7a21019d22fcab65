package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cortex-os/cortex/internal/models"
)

// ListTasks returns the flat task list ordered by position.
//
//	@Summary	List tasks
//	@Tags		tasks
//	@Produce	json
//	@Success	200	{object}	TaskListResponse
//	@Router		/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := h.state.Tasks()
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// TaskTree returns the task hierarchy with completion aggregates.
//
//	@Summary	Task tree
//	@Tags		tasks
//	@Produce	json
//	@Success	200	{object}	models.TaskTreeView
//	@Router		/tasks/tree [get]
func (h *Handler) TaskTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.TaskTree(time.Now()))
}

// CreateTask records a new task, optionally under a parent.
//
//	@Summary	Create task
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Param		body	body	CreateTaskRequest	true	"task fields"
//	@Success	201	{object}	models.Task
//	@Failure	400	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := h.applier.CreateTask(r.Context(), req)
	if err != nil {
		writeError(w, "create task", err)
		return
	}
	h.publish(models.OpCreate, models.KindTask, task.ID)
	writeJSON(w, http.StatusCreated, task)
}

// RecalculatePriorities recomputes priority scores for every live task.
//
//	@Summary	Recalculate priorities
//	@Tags		tasks
//	@Produce	json
//	@Success	200	{object}	RecalculateResponse
//	@Router		/tasks/recalculate [post]
func (h *Handler) RecalculatePriorities(w http.ResponseWriter, r *http.Request) {
	changed, err := h.applier.RecalculateAllPriorities(time.Now())
	if err != nil {
		writeError(w, "recalculate priorities", err)
		return
	}
	writeJSON(w, http.StatusOK, RecalculateResponse{Changed: changed})
}

// GetTask returns a single task.
//
//	@Summary	Get task
//	@Tags		tasks
//	@Produce	json
//	@Param		id	path	string	true	"task id"
//	@Success	200	{object}	models.Task
//	@Failure	404	{object}	errResponse
//	@Router		/tasks/{id} [get]
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.state.Task(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update, including reparenting.
//
//	@Summary	Update task
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string				true	"task id"
//	@Param		body	body	UpdateTaskRequest	true	"fields to change"
//	@Success	200	{object}	models.Task
//	@Failure	400	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/tasks/{id} [put]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := h.applier.UpdateTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update task", err)
		return
	}
	h.publish(models.OpUpdate, models.KindTask, task.ID)
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task. Its children are detached to the root level.
//
//	@Summary	Delete task
//	@Tags		tasks
//	@Param		id	path	string	true	"task id"
//	@Success	204
//	@Failure	404	{object}	errResponse
//	@Router		/tasks/{id} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.applier.DeleteTask(r.Context(), id); err != nil {
		writeError(w, "delete task", err)
		return
	}
	h.publish(models.OpDelete, models.KindTask, id)
	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask marks a task completed.
//
//	@Summary	Complete task
//	@Tags		tasks
//	@Produce	json
//	@Param		id	path	string	true	"task id"
//	@Success	200	{object}	models.Task
//	@Failure	404	{object}	errResponse
//	@Router		/tasks/{id}/complete [post]
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.applier.CompleteTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "complete task", err)
		return
	}
	h.publish(models.OpUpdate, models.KindTask, task.ID)
	writeJSON(w, http.StatusOK, task)
}

// TaskPriority returns a task's priority factor breakdown.
//
//	@Summary	Task priority breakdown
//	@Tags		tasks
//	@Produce	json
//	@Param		id	path	string	true	"task id"
//	@Success	200	{object}	scoring.PriorityScore
//	@Failure	404	{object}	errResponse
//	@Router		/tasks/{id}/priority [get]
func (h *Handler) TaskPriority(w http.ResponseWriter, r *http.Request) {
	score, err := h.applier.TaskPriority(chi.URLParam(r, "id"), time.Now())
	if err != nil {
		writeError(w, "task priority", err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}
