package domain

import (
	"time"

	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// VariantKey identifies the pricing scope of an offer or a cart selection.
// It is the variant's exact weight label, compared by string equality and
// never parsed for a numeric magnitude. The zero value means "whole product".
type VariantKey string

// WholeProduct is the scope sentinel for offers that cover the product's
// flat price rather than a single variant.
const WholeProduct VariantKey = ""

// IsWholeProduct reports whether the key denotes the whole-product scope.
func (k VariantKey) IsWholeProduct() bool {
	return k == WholeProduct
}

// PriceVariant is a named pricing option of a product. Weight is a free-form
// label ("1KG", "500G"), not a normalized unit.
type PriceVariant struct {
	Weight string `json:"weight"`
	Price  Cents  `json:"price_cents"`
}

// Product represents a bakery product with its ordered price variants.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	CategoryID  string         `json:"category_id,omitempty"`
	Price       Cents          `json:"price_cents"`
	Stock       int            `json:"stock"`
	Images      []string       `json:"images"`
	Variants    []PriceVariant `json:"variants"`
	Rating      float64        `json:"rating"`
	ReviewCount int            `json:"review_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// VariantByKey returns the variant whose weight label matches the key
// exactly. The second return is false when no variant matches or the key is
// the whole-product sentinel.
func (p *Product) VariantByKey(key VariantKey) (PriceVariant, bool) {
	if key.IsWholeProduct() {
		return PriceVariant{}, false
	}
	for _, v := range p.Variants {
		if VariantKey(v.Weight) == key {
			return v, true
		}
	}
	return PriceVariant{}, false
}

// PriceForScope returns the variant price for a variant-scoped key, falling
// back to the product's flat price when the key is whole-product or matches
// no variant.
func (p *Product) PriceForScope(key VariantKey) Cents {
	if v, ok := p.VariantByKey(key); ok {
		return v.Price
	}
	return p.Price
}

// ValidateVariants checks the variant list invariants: non-negative prices
// and no two variants sharing the same weight label. Duplicate labels would
// make offer scoping and price lookup ambiguous, so they are rejected at
// write time.
func ValidateVariants(variants []PriceVariant) error {
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if v.Weight == "" {
			return apperrors.InvalidInput("variant weight label must not be empty")
		}
		if v.Price < 0 {
			return apperrors.InvalidInput("variant price must not be negative")
		}
		if _, dup := seen[v.Weight]; dup {
			return apperrors.InvalidInput("duplicate variant weight label: " + v.Weight)
		}
		seen[v.Weight] = struct{}{}
	}
	return nil
}
