package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/service"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/httputil"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/validator"
)

const maxBodyBytes = 1 << 20 // 1 MB

// OfferHandler handles HTTP requests for offer endpoints.
type OfferHandler struct {
	service *service.OfferService
	logger  *slog.Logger
}

// NewOfferHandler creates a new offer HTTP handler.
func NewOfferHandler(svc *service.OfferService, logger *slog.Logger) *OfferHandler {
	return &OfferHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateOfferRequest is the JSON request body for creating an offer.
type CreateOfferRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	VariantKey      string `json:"variant_key" validate:"max=100"`
	DiscountedPrice int64  `json:"discounted_price_cents" validate:"required,gt=0"`
	StartDate       string `json:"start_date" validate:"required"`
	EndDate         string `json:"end_date" validate:"required"`
	IsActive        bool   `json:"is_active"`
}

// UpdateOfferRequest is the JSON request body for updating an offer.
type UpdateOfferRequest struct {
	VariantKey      *string `json:"variant_key" validate:"omitempty,max=100"`
	DiscountedPrice *int64  `json:"discounted_price_cents" validate:"omitempty,gt=0"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	IsActive        *bool   `json:"is_active"`
}

// CreateOffer handles POST /api/v1/admin/offers
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	startDate, ok := parseRFC3339(w, "start_date", req.StartDate)
	if !ok {
		return
	}
	endDate, ok := parseRFC3339(w, "end_date", req.EndDate)
	if !ok {
		return
	}

	offer, err := h.service.CreateOffer(r.Context(), &service.CreateOfferInput{
		ProductID:       req.ProductID,
		VariantKey:      req.VariantKey,
		DiscountedPrice: req.DiscountedPrice,
		StartDate:       startDate,
		EndDate:         endDate,
		IsActive:        req.IsActive,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: offer})
}

// ListOffers handles GET /api/v1/admin/offers
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	filter := repository.OfferFilter{}
	filter.Page, filter.PerPage = pageParams(r)

	if v := r.URL.Query().Get("product_id"); v != "" {
		filter.ProductID = &v
	}
	if v := r.URL.Query().Get("is_active"); v != "" {
		if active, err := strconv.ParseBool(v); err == nil {
			filter.IsActive = &active
		}
	}

	offers, total, err := h.service.ListOffers(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(offers, total, filter.Page, filter.PerPage))
}

// ListInEffect handles GET /api/v1/offers
func (h *OfferHandler) ListInEffect(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListInEffectViews(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: views})
}

// GetOffer handles GET /api/v1/admin/offers/{id}
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	offer, err := h.service.GetOffer(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}

// UpdateOffer handles PUT /api/v1/admin/offers/{id}
func (h *OfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")

	var req UpdateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateOfferInput{
		VariantKey:      req.VariantKey,
		DiscountedPrice: req.DiscountedPrice,
		IsActive:        req.IsActive,
	}

	if req.StartDate != nil {
		startDate, ok := parseRFC3339(w, "start_date", *req.StartDate)
		if !ok {
			return
		}
		input.StartDate = &startDate
	}
	if req.EndDate != nil {
		endDate, ok := parseRFC3339(w, "end_date", *req.EndDate)
		if !ok {
			return
		}
		input.EndDate = &endDate
	}

	offer, err := h.service.UpdateOffer(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}

// ActivateOffer handles POST /api/v1/admin/offers/{id}/activate
func (h *OfferHandler) ActivateOffer(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// DeactivateOffer handles POST /api/v1/admin/offers/{id}/deactivate
func (h *OfferHandler) DeactivateOffer(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *OfferHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "id")

	offer, err := h.service.UpdateOffer(r.Context(), id, &service.UpdateOfferInput{IsActive: &active})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: offer})
}

// DeleteOffer handles DELETE /api/v1/admin/offers/{id}
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteOffer(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseRFC3339(w http.ResponseWriter, field, value string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: field + " must be in RFC3339 format"},
		})
		return time.Time{}, false
	}
	return t, true
}
