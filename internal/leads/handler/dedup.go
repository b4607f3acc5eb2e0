package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/internal/leads/service"
	"github.com/leadflow/leadflow-backend/pkg/actor"
	"github.com/leadflow/leadflow-backend/pkg/httputil"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// DedupHandler handles duplicate check endpoints. Deletion only happens on
// the explicit confirm endpoint.
type DedupHandler struct {
	service *service.DedupService
	logger  *logger.Logger
}

// NewDedupHandler creates a new dedup handler
func NewDedupHandler(svc *service.DedupService, log *logger.Logger) *DedupHandler {
	return &DedupHandler{
		service: svc,
		logger:  log,
	}
}

// CheckRequest is the request body for a duplicate check
type CheckRequest struct {
	CandidateIDs []string             `json:"candidate_ids" validate:"required,min=1,dive,required"`
	Criteria     domain.MatchCriteria `json:"criteria"`
}

// Check runs a duplicate check and opens a review session
func (h *DedupHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	session, err := h.service.Check(r.Context(), req.CandidateIDs, req.Criteria)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, session)
}

// Get returns the report of a session
func (h *DedupHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Report(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, session)
}

// Confirm deletes the duplicates reported by a session
func (h *DedupHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	outcome, err := h.service.ConfirmDelete(r.Context(), sessionID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	h.logger.Info().
		Str("session_id", sessionID).
		Str("operator", actor.Name(r.Context())).
		Str("request_id", httputil.GetRequestID(r.Context())).
		Int("deleted", outcome.Deleted).
		Msg("operator confirmed duplicate deletion")

	httputil.JSON(w, http.StatusOK, outcome)
}
