package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/event"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// OfferView supplies the offers currently applying to storefront prices.
type OfferView interface {
	ListInEffect(ctx context.Context) ([]domain.Offer, error)
}

// OrderService implements order placement and fulfilment. Placement derives
// every price on the server from fresh product state and the in-effect
// offers; client-sent amounts are never consulted.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	offers   OfferView
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	offers OfferView,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		offers:   offers,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OrderLineInput is one requested selection: product, variant, quantity.
// No price fields exist here on purpose.
type OrderLineInput struct {
	ProductID  string
	VariantKey string
	Quantity   int
}

// PlaceOrderInput holds the parameters for placing an order.
type PlaceOrderInput struct {
	Lines           []OrderLineInput
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// PlaceOrder prices the requested selections, derives the totals, and
// persists the order together with the stock decrements in one transaction.
// Nothing is written when any product cannot cover its quantity.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, input *PlaceOrderInput) (*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("order requires an authenticated customer")
	}
	if len(input.Lines) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	if !domain.ValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported payment method %q", input.PaymentMethod))
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, err
	}

	inEffect, err := s.offers.ListInEffect(ctx)
	if err != nil {
		return nil, fmt.Errorf("load in-effect offers: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}

		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", line.ProductID, err)
		}

		key := domain.VariantKey(line.VariantKey)
		variantDisplay := ""
		if !key.IsWholeProduct() {
			variant, ok := product.VariantByKey(key)
			if !ok {
				return nil, apperrors.InvalidInput(fmt.Sprintf(
					"product %q has no variant %q", product.Name, line.VariantKey,
				))
			}
			variantDisplay = variant.Weight
		}

		quote := domain.ResolvePrice(product, key, inEffect)

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}

		items = append(items, domain.OrderItem{
			ID:             uuid.New().String(),
			ProductID:      product.ID,
			Name:           product.Name,
			Image:          image,
			VariantKey:     key,
			VariantDisplay: variantDisplay,
			UnitPrice:      quote.Price,
			Quantity:       line.Quantity,
		})
	}

	now := s.now()
	order := &domain.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Totals:          domain.ComputeTotals(items),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.CreateWithStockDecrement(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int("item_count", len(order.Items)),
		slog.Int64("total_cents", int64(order.Totals.Total)),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// ListUserOrders returns a customer's order history, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.orders.ListByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list user orders: %w", err)
	}
	return orders, total, nil
}

// ListOrders returns a filtered, paginated admin view of orders.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// MarkPaid records payment on an order.
func (s *OrderService) MarkPaid(ctx context.Context, id string) (*domain.Order, error) {
	if err := s.orders.MarkPaid(ctx, id, s.now()); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	s.logger.InfoContext(ctx, "order marked paid", slog.String("order_id", id))
	return order, nil
}

// MarkDelivered records delivery on an order.
func (s *OrderService) MarkDelivered(ctx context.Context, id string) (*domain.Order, error) {
	if err := s.orders.MarkDelivered(ctx, id, s.now()); err != nil {
		return nil, fmt.Errorf("mark order delivered: %w", err)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	s.logger.InfoContext(ctx, "order marked delivered", slog.String("order_id", id))
	return order, nil
}
