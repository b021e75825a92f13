package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// OrderPlacer places a priced order from selections. Satisfied by OrderService.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID string, input *PlaceOrderInput) (*domain.Order, error)
}

// CartService manages customer carts. Carts hold selections only; every
// read prices them fresh so the cart can never pin a price that an offer
// change has since moved.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	offers   OfferView
	placer   OrderPlacer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	offers OfferView,
	placer OrderPlacer,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		offers:   offers,
		placer:   placer,
		logger:   logger,
	}
}

// PricedCartLine is a cart line with its freshly derived price.
type PricedCartLine struct {
	ProductID      string            `json:"product_id"`
	Name           string            `json:"name"`
	Image          string            `json:"image,omitempty"`
	VariantKey     domain.VariantKey `json:"variant_key"`
	Quantity       int               `json:"quantity"`
	Quote          domain.PriceQuote `json:"quote"`
	LineTotalCents int64             `json:"line_total_cents"`
}

// PricedCart is the customer's cart with derived prices and a totals
// preview computed with the same rules as checkout.
type PricedCart struct {
	UserID string             `json:"user_id"`
	Lines  []PricedCartLine   `json:"lines"`
	Totals domain.OrderTotals `json:"totals"`
}

// GetCart returns the customer's cart priced against current products and
// in-effect offers. Lines whose product has been removed are dropped.
func (s *CartService) GetCart(ctx context.Context, userID string) (*PricedCart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	inEffect, err := s.offers.ListInEffect(ctx)
	if err != nil {
		return nil, fmt.Errorf("load in-effect offers: %w", err)
	}

	priced := &PricedCart{
		UserID: userID,
		Lines:  []PricedCartLine{},
	}

	var items []domain.OrderItem
	for _, line := range cart.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load product %s: %w", line.ProductID, err)
		}

		quote := domain.ResolvePrice(product, line.VariantKey, inEffect)

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}

		priced.Lines = append(priced.Lines, PricedCartLine{
			ProductID:      product.ID,
			Name:           product.Name,
			Image:          image,
			VariantKey:     line.VariantKey,
			Quantity:       line.Quantity,
			Quote:          quote,
			LineTotalCents: int64(quote.Price.Mul(line.Quantity)),
		})

		items = append(items, domain.OrderItem{
			UnitPrice: quote.Price,
			Quantity:  line.Quantity,
		})
	}

	if len(items) > 0 {
		priced.Totals = domain.ComputeTotals(items)
	}

	return priced, nil
}

// AddItem adds a selection to the cart, merging quantities for an existing
// product and variant combination.
func (s *CartService) AddItem(ctx context.Context, userID, productID, variantKey string, quantity int) (*PricedCart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}

	key := domain.VariantKey(variantKey)
	if !key.IsWholeProduct() {
		if _, ok := product.VariantByKey(key); !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf(
				"product %q has no variant %q", product.Name, variantKey,
			))
		}
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	newLine := domain.CartLine{ProductID: productID, VariantKey: key, Quantity: quantity}
	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].LineKey() == newLine.LineKey() {
			cart.Lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, newLine)
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.DebugContext(ctx, "cart item added",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return s.GetCart(ctx, userID)
}

// UpdateItem sets the quantity of a cart line. A zero quantity removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID, variantKey string, quantity int) (*PricedCart, error) {
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	target := domain.CartLine{ProductID: productID, VariantKey: domain.VariantKey(variantKey)}
	found := false
	lines := cart.Lines[:0]
	for _, line := range cart.Lines {
		if line.LineKey() == target.LineKey() {
			found = true
			if quantity == 0 {
				continue
			}
			line.Quantity = quantity
		}
		lines = append(lines, line)
	}
	cart.Lines = lines

	if !found {
		return nil, apperrors.NotFound("cart item", target.LineKey())
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// ClearCart empties the customer's cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// CheckoutInput holds the parameters for checking out a cart.
type CheckoutInput struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// Checkout places an order from the cart's current selections and clears
// the cart on success.
func (s *CartService) Checkout(ctx context.Context, userID string, input *CheckoutInput) (*domain.Order, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if len(cart.Lines) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	lines := make([]OrderLineInput, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, OrderLineInput{
			ProductID:  line.ProductID,
			VariantKey: string(line.VariantKey),
			Quantity:   line.Quantity,
		})
	}

	order, err := s.placer.PlaceOrder(ctx, userID, &PlaceOrderInput{
		Lines:           lines,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}
