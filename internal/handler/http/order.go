package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/service"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/httputil"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/middleware"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/pagination"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/validator"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// OrderLineRequest is one requested item in an order payload. Clients send
// selections only; prices are derived server-side.
type OrderLineRequest struct {
	ProductID  string `json:"product_id" validate:"required,uuid"`
	VariantKey string `json:"variant_key" validate:"max=100"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

// ShippingAddressRequest is the delivery destination in an order payload.
type ShippingAddressRequest struct {
	FullName   string `json:"full_name" validate:"required,max=255"`
	Address    string `json:"address" validate:"required,max=500"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"max=30"`
}

// PlaceOrderRequest is the JSON request body for placing an order.
type PlaceOrderRequest struct {
	Items           []OrderLineRequest     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required,oneof=card cash_on_delivery mobile_money"`
}

func (r ShippingAddressRequest) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName:   r.FullName,
		Address:    r.Address,
		City:       r.City,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
	}
}

// PlaceOrder handles POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req PlaceOrderRequest
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

	lines := make([]service.OrderLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.OrderLineInput{
			ProductID:  item.ProductID,
			VariantKey: item.VariantKey,
			Quantity:   item.Quantity,
		})
	}

	order, err := h.service.PlaceOrder(r.Context(), middleware.UserIDFromContext(r.Context()), &service.PlaceOrderInput{
		Lines:           lines,
		ShippingAddress: req.ShippingAddress.toDomain(),
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// GetOrder handles GET /api/v1/orders/{id}. Customers can only read their
// own orders; admins can read any.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	ctx := r.Context()
	if middleware.RoleFromContext(ctx) != middleware.RoleAdmin && order.UserID != middleware.UserIDFromContext(ctx) {
		httputil.WriteError(w, r, apperrors.Forbidden("order belongs to another customer"), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// ListMyOrders handles GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	orders, total, err := h.service.ListUserOrders(r.Context(), middleware.UserIDFromContext(r.Context()), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, page, perPage))
}

// ListOrders handles GET /api/v1/admin/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := repository.OrderFilter{}
	filter.Page, filter.PerPage = pageParams(r)

	if v := r.URL.Query().Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := r.URL.Query().Get("is_paid"); v != "" {
		if paid, err := strconv.ParseBool(v); err == nil {
			filter.IsPaid = &paid
		}
	}
	if v := r.URL.Query().Get("is_delivered"); v != "" {
		if delivered, err := strconv.ParseBool(v); err == nil {
			filter.IsDelivered = &delivered
		}
	}

	orders, total, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, filter.Page, filter.PerPage))
}

// MarkPaid handles POST /api/v1/admin/orders/{id}/pay
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.service.MarkPaid(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// MarkDelivered handles POST /api/v1/admin/orders/{id}/deliver
func (h *OrderHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.service.MarkDelivered(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

func pageParams(r *http.Request) (int, int) {
	p := pagination.FromRequest(r)
	return p.Page, p.PerPage
}
