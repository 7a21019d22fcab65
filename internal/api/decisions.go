package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/scoring"
)

const defaultReportDays = 30

// ListDecisions returns all decisions, newest first.
//
//	@Summary	List decisions
//	@Tags		decisions
//	@Produce	json
//	@Success	200	{object}	DecisionListResponse
//	@Router		/decisions [get]
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions := h.state.Decisions()
	writeJSON(w, http.StatusOK, DecisionListResponse{Decisions: decisions, Total: len(decisions)})
}

// CreateDecision records a new decision.
//
//	@Summary	Create decision
//	@Tags		decisions
//	@Accept		json
//	@Produce	json
//	@Param		body	body	CreateDecisionRequest	true	"decision fields"
//	@Success	201	{object}	models.Decision
//	@Failure	400	{object}	errResponse
//	@Router		/decisions [post]
func (h *Handler) CreateDecision(w http.ResponseWriter, r *http.Request) {
	var req CreateDecisionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	decision, err := h.applier.CreateDecision(r.Context(), req)
	if err != nil {
		writeError(w, "create decision", err)
		return
	}
	h.publish(models.OpCreate, models.KindDecision, decision.ID)
	writeJSON(w, http.StatusCreated, decision)
}

// RecordOutcome records the actual outcome of a decision.
//
//	@Summary	Record decision outcome
//	@Tags		decisions
//	@Accept		json
//	@Produce	json
//	@Param		id		path	string			true	"decision id"
//	@Param		body	body	OutcomeRequest	true	"outcome fields"
//	@Success	200	{object}	models.Decision
//	@Failure	400	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/decisions/{id}/outcome [post]
func (h *Handler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var req OutcomeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	decision, err := h.applier.RecordDecisionOutcome(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "record outcome", err)
		return
	}
	h.publish(models.OpUpdate, models.KindDecision, decision.ID)
	writeJSON(w, http.StatusOK, decision)
}

// DecisionBiases returns cognitive biases detected in a decision's reasoning.
//
//	@Summary	Decision biases
//	@Tags		decisions
//	@Produce	json
//	@Param		id	path	string	true	"decision id"
//	@Success	200	{object}	BiasesResponse
//	@Failure	404	{object}	errResponse
//	@Router		/decisions/{id}/biases [get]
func (h *Handler) DecisionBiases(w http.ResponseWriter, r *http.Request) {
	decision, ok := h.state.Decision(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, BiasesResponse{Biases: scoring.AnalyzeDecision(decision)})
}

// BiasReport aggregates bias frequencies over a trailing window.
//
//	@Summary	Bias report
//	@Tags		decisions
//	@Produce	json
//	@Param		days	query	int	false	"window length in days"	default(30)
//	@Success	200	{object}	scoring.BiasReport
//	@Failure	400	{object}	errResponse
//	@Router		/decisions/report [get]
func (h *Handler) BiasReport(w http.ResponseWriter, r *http.Request) {
	days := defaultReportDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("days must be a positive integer"))
			return
		}
		days = n
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	writeJSON(w, http.StatusOK, scoring.BuildReport(h.state.Decisions(), start, end))
}
