package domain

import (
	"time"

	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// Pricing rule constants. Tax is applied to the item subtotal; shipping is a
// flat fee waived only strictly above the free-shipping threshold.
const (
	TaxRateBasisPoints    = 800 // 8%
	FreeShippingThreshold = Cents(10000)
	ShippingFlatFee       = Cents(1000)
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCard           = "card"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
	PaymentMethodMobileMoney    = "mobile_money"
)

// ShippingAddress is the delivery destination captured with an order.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderItem is a priced line of an order. UnitPrice is the server-derived
// effective price at placement time, never a client-supplied value.
type OrderItem struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	Name           string     `json:"name"`
	Image          string     `json:"image,omitempty"`
	VariantKey     VariantKey `json:"variant_key"`
	VariantDisplay string     `json:"variant_display,omitempty"`
	UnitPrice      Cents      `json:"unit_price_cents"`
	Quantity       int        `json:"quantity"`
}

// LineTotal returns the item's price contribution.
func (i *OrderItem) LineTotal() Cents {
	return i.UnitPrice.Mul(i.Quantity)
}

// OrderTotals are the derived monetary components of an order. Total is
// always the sum of the other three by construction.
type OrderTotals struct {
	Items    Cents `json:"items_cents"`
	Tax      Cents `json:"tax_cents"`
	Shipping Cents `json:"shipping_cents"`
	Total    Cents `json:"total_cents"`
}

// Order is a placed customer order with its immutable priced items.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Totals          OrderTotals     `json:"totals"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ComputeTotals derives the order totals from priced items. The item
// subtotal is the sum of line totals, tax is rounded half up on its own, and
// shipping is free only strictly above the threshold. Each component is
// settled before the final sum so the total always equals
// items + tax + shipping.
func ComputeTotals(items []OrderItem) OrderTotals {
	var subtotal Cents
	for i := range items {
		subtotal += items[i].LineTotal()
	}
	tax := MulRateHalfUp(subtotal, TaxRateBasisPoints, 10000)
	shipping := ShippingFlatFee
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}
	return OrderTotals{
		Items:    subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}

// ValidPaymentMethod reports whether the method is one the store accepts.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCard, PaymentMethodCashOnDelivery, PaymentMethodMobileMoney:
		return true
	}
	return false
}

// Validate checks the address fields required for delivery.
func (a ShippingAddress) Validate() error {
	switch {
	case a.FullName == "":
		return apperrors.InvalidInput("shipping address full_name is required")
	case a.Address == "":
		return apperrors.InvalidInput("shipping address street is required")
	case a.City == "":
		return apperrors.InvalidInput("shipping address city is required")
	case a.Country == "":
		return apperrors.InvalidInput("shipping address country is required")
	}
	return nil
}
