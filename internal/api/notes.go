package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cortex-os/cortex/internal/models"
)

// ListNotes returns all notes, newest first.
//
//	@Summary	List notes
//	@Tags		notes
//	@Produce	json
//	@Success	200	{object}	NoteListResponse
//	@Router		/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes := h.state.Notes()
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// CreateNote records a new note.
//
//	@Summary	Create note
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		body	body	CreateNoteRequest	true	"note fields"
//	@Success	201	{object}	models.Note
//	@Failure	400	{object}	errResponse
//	@Router		/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.applier.CreateNote(r.Context(), req)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	h.publish(models.OpCreate, models.KindNote, note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// GetNote returns a single note.
//
//	@Summary	Get note
//	@Tags		notes
//	@Produce	json
//	@Param		id	path	string	true	"note id"
//	@Success	200	{object}	models.Note
//	@Failure	404	{object}	errResponse
//	@Router		/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.state.Note(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote applies a partial update to a note.
//
//	@Summary	Update note
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string				true	"note id"
//	@Param		body	body	UpdateNoteRequest	true	"fields to change"
//	@Success	200	{object}	models.Note
//	@Failure	400	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.applier.UpdateNote(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	h.publish(models.OpUpdate, models.KindNote, note.ID)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote removes a note.
//
//	@Summary	Delete note
//	@Tags		notes
//	@Param		id	path	string	true	"note id"
//	@Success	204
//	@Failure	404	{object}	errResponse
//	@Router		/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.applier.DeleteNote(r.Context(), id); err != nil {
		writeError(w, "delete note", err)
		return
	}
	h.publish(models.OpDelete, models.KindNote, id)
	w.WriteHeader(http.StatusNoContent)
}
