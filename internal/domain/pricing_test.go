package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProduct() *Product {
	return &Product{
		ID:    "p1",
		Name:  "Chocolate Fudge Cake",
		Price: 1500,
		Variants: []PriceVariant{
			{Weight: "500G", Price: 900},
			{Weight: "1KG", Price: 1000},
		},
	}
}

func TestResolvePriceNoOffers(t *testing.T) {
	p := sampleProduct()

	quote := ResolvePrice(p, WholeProduct, nil)
	assert.Equal(t, Cents(1500), quote.Price)
	assert.Equal(t, Cents(1500), quote.OriginalPrice)
	assert.False(t, quote.OfferApplied)

	quote = ResolvePrice(p, "1KG", nil)
	assert.Equal(t, Cents(1000), quote.Price)
	assert.Equal(t, Cents(1000), quote.OriginalPrice)
}

func TestResolvePriceVariantOffer(t *testing.T) {
	p := sampleProduct()
	offers := []Offer{{
		ID:              "o1",
		ProductID:       "p1",
		VariantKey:      "1KG",
		DiscountedPrice: 800,
		IsActive:        true,
	}}

	quote := ResolvePrice(p, "1KG", offers)
	assert.Equal(t, Cents(800), quote.Price)
	assert.Equal(t, Cents(1000), quote.OriginalPrice)
	assert.True(t, quote.OfferApplied)
	assert.Equal(t, "o1", quote.OfferID)
	assert.Equal(t, 20, quote.DiscountPercent)

	// The sibling variant keeps its own price.
	quote = ResolvePrice(p, "500G", offers)
	assert.Equal(t, Cents(900), quote.Price)
	assert.False(t, quote.OfferApplied)

	// The flat price is untouched by a variant-scoped offer.
	quote = ResolvePrice(p, WholeProduct, offers)
	assert.Equal(t, Cents(1500), quote.Price)
	assert.False(t, quote.OfferApplied)
}

func TestResolvePriceWholeProductOffer(t *testing.T) {
	p := sampleProduct()
	offers := []Offer{{
		ID:              "o1",
		ProductID:       "p1",
		VariantKey:      WholeProduct,
		DiscountedPrice: 1200,
		IsActive:        true,
	}}

	quote := ResolvePrice(p, WholeProduct, offers)
	assert.Equal(t, Cents(1200), quote.Price)
	assert.True(t, quote.OfferApplied)

	// Variant selections keep their variant price.
	quote = ResolvePrice(p, "1KG", offers)
	assert.Equal(t, Cents(1000), quote.Price)
	assert.False(t, quote.OfferApplied)
}

func TestResolvePriceIgnoresOtherProduct(t *testing.T) {
	p := sampleProduct()
	offers := []Offer{{
		ID:              "o1",
		ProductID:       "p2",
		VariantKey:      WholeProduct,
		DiscountedPrice: 100,
		IsActive:        true,
	}}

	quote := ResolvePrice(p, WholeProduct, offers)
	assert.Equal(t, Cents(1500), quote.Price)
	assert.False(t, quote.OfferApplied)
}

func TestResolvePriceNeverRaisesPrice(t *testing.T) {
	p := sampleProduct()
	offers := []Offer{{
		ID:              "o1",
		ProductID:       "p1",
		VariantKey:      "1KG",
		DiscountedPrice: 1100,
		IsActive:        true,
	}}

	quote := ResolvePrice(p, "1KG", offers)
	assert.Equal(t, Cents(1000), quote.Price)
	assert.False(t, quote.OfferApplied)
}

func TestResolvePriceUnknownVariantFallsBack(t *testing.T) {
	p := sampleProduct()

	quote := ResolvePrice(p, "2KG", nil)
	assert.Equal(t, Cents(1500), quote.Price)
	assert.Equal(t, Cents(1500), quote.OriginalPrice)
}
