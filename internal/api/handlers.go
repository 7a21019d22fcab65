package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cortex-os/cortex/internal/apperr"
	"github.com/cortex-os/cortex/internal/applier"
	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/connectivity"
	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/sse"
	"github.com/cortex-os/cortex/internal/syncengine"
)

const maxBodyBytes = 1 << 20

// Handler carries the dependencies shared by all HTTP handlers.
type Handler struct {
	state   *appstate.Container
	applier *applier.Applier
	engine  *syncengine.Engine
	ctrl    *connectivity.Controller
	events  *sse.Broker
}

// NewHandler creates the API handler set. events may be nil when SSE is
// disabled.
func NewHandler(state *appstate.Container, ap *applier.Applier, engine *syncengine.Engine, ctrl *connectivity.Controller, events *sse.Broker) *Handler {
	return &Handler{state: state, applier: ap, engine: engine, ctrl: ctrl, events: events}
}

func (h *Handler) publish(op models.Operation, kind models.EntityKind, id string) {
	if h.events != nil {
		h.events.PublishEntityEvent(op, kind, id)
	}
}

// decodeBody reads a size-capped JSON request body into v. It writes the 400
// response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// writeError maps domain errors onto HTTP status codes. Validation errors and
// rejected inputs become 400, missing entities 404, everything else 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var verrs validation.Errors
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput), errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// GetState returns the current sync and connectivity snapshot.
//
//	@Summary	Sync state
//	@Tags		sync
//	@Produce	json
//	@Success	200	{object}	models.SyncState
//	@Router		/state [get]
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.SyncState())
}

// SetOnline manually overrides connectivity. Coming online triggers a drain
// and a pull before the response is written.
//
//	@Summary	Set connectivity
//	@Tags		sync
//	@Accept		json
//	@Produce	json
//	@Param		body	body	SetOnlineRequest	true	"connectivity flag"
//	@Success	200	{object}	models.SyncState
//	@Failure	400	{object}	errResponse
//	@Router		/state/online [post]
func (h *Handler) SetOnline(w http.ResponseWriter, r *http.Request) {
	var req SetOnlineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.ctrl.SetOnline(r.Context(), req.Online)
	writeJSON(w, http.StatusOK, h.state.SyncState())
}

// TriggerSync runs a drain cycle and returns its summary. A cycle already in
// progress yields an empty summary.
//
//	@Summary	Trigger sync
//	@Tags		sync
//	@Produce	json
//	@Success	200	{object}	SyncResult
//	@Router		/sync [post]
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Sync(r.Context()))
}
