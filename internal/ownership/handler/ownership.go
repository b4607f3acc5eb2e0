package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/leadflow/leadflow-backend/internal/ownership/analyzer"
	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/internal/ownership/service"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/httputil"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// maxBatchSize caps the vehicles accepted by one batch request
const maxBatchSize = 100

// OwnershipHandler handles ownership analysis endpoints
type OwnershipHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewOwnershipHandler creates a new ownership handler
func NewOwnershipHandler(svc *service.Service, log *logger.Logger) *OwnershipHandler {
	return &OwnershipHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the ownership endpoints under /api/v1/ownership
func Routes(r chi.Router, h *OwnershipHandler) {
	r.Route("/api/v1/ownership", func(r chi.Router) {
		r.Post("/analyze", h.Analyze)
		r.Post("/batch", h.Batch)
		r.Get("/vehicles/{regNr}", h.GetVehicle)
	})
}

// AnalyzeRequest carries a history supplied by the caller, most recent
// owner first
type AnalyzeRequest struct {
	RegNr      string                     `json:"reg_nr" validate:"required,max=20"`
	ChassisNr  string                     `json:"chassis_nr" validate:"max=40"`
	OwnerName  *string                    `json:"owner_name"`
	SellerName *string                    `json:"seller_name"`
	Phone      *string                    `json:"phone"`
	History    []domain.RawOwnershipEvent `json:"history" validate:"required"`
}

// Analyze analyzes a supplied ownership history
func (h *OwnershipHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	analysis, err := h.service.AnalyzeWith(r.Context(), analyzer.Input{
		RegNr:      req.RegNr,
		OwnerName:  req.OwnerName,
		SellerName: req.SellerName,
		History:    req.History,
	}, service.VehicleInput{
		ChassisNr:  req.ChassisNr,
		SellerName: req.SellerName,
		Phone:      req.Phone,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, analysis)
}

// GetVehicle fetches a vehicle's history from the registry and analyzes it.
// The optional seller query parameter names the listing's seller.
func (h *OwnershipHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	regNr := chi.URLParam(r, "regNr")

	var seller *string
	if s := strings.TrimSpace(r.URL.Query().Get("seller")); s != "" {
		seller = &s
	}

	analysis, err := h.service.AnalyzeVehicle(r.Context(), regNr, seller)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, analysis)
}

// BatchRequest lists vehicles to fetch and analyze
type BatchRequest struct {
	RegNrs []string `json:"reg_nrs" validate:"required,min=1,dive,required"`
}

// BatchItemResponse is one vehicle of a batch response
type BatchItemResponse struct {
	RegNr    string              `json:"reg_nr"`
	Analysis *service.Analysis   `json:"analysis,omitempty"`
	Error    *httputil.ErrorBody `json:"error,omitempty"`
}

// Batch analyzes many vehicles. Vehicles that fail carry their own error;
// the request itself succeeds.
func (h *OwnershipHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if len(req.RegNrs) > maxBatchSize {
		httputil.Error(w, r, errors.Validation(map[string]string{
			"reg_nrs": "must be at most 100",
		}))
		return
	}

	items, err := h.service.AnalyzeBatch(r.Context(), req.RegNrs)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	response := make([]BatchItemResponse, len(items))
	for i, item := range items {
		response[i] = BatchItemResponse{RegNr: item.RegNr, Analysis: item.Analysis}
		if item.Err != nil {
			response[i].Error = httputil.NewErrorBody(r, item.Err)
		}
	}

	httputil.JSON(w, http.StatusOK, response)
}
