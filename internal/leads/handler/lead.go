package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leadflow/leadflow-backend/internal/leads/domain"
	"github.com/leadflow/leadflow-backend/internal/leads/service"
	"github.com/leadflow/leadflow-backend/pkg/httputil"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	service *service.LeadService
	logger  *logger.Logger
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(svc *service.LeadService, log *logger.Logger) *LeadHandler {
	return &LeadHandler{
		service: svc,
		logger:  log,
	}
}

// List lists leads, newest first
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	leads, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, leads, httputil.NewMeta(page, perPage, total))
}

// Get gets a lead by ID
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lead)
}

// CreateLeadRequest is the request body for creating a lead
type CreateLeadRequest struct {
	RegNr     *string `json:"reg_nr" validate:"omitempty,max=20"`
	ChassisNr *string `json:"chassis_nr" validate:"omitempty,max=40"`
	OwnerName *string `json:"owner_name" validate:"omitempty,max=200"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
	Source    string  `json:"source" validate:"omitempty,oneof=listing import"`
	Details   *string `json:"details"`
}

// Create creates a new lead
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	lead := &domain.LeadRecord{
		RegNr:     req.RegNr,
		ChassisNr: req.ChassisNr,
		OwnerName: req.OwnerName,
		Phone:     req.Phone,
		Source:    req.Source,
		Details:   req.Details,
	}

	if err := h.service.Create(r.Context(), lead); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, lead)
}
