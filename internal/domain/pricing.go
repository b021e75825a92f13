package domain

// PriceQuote is the effective price of a product selection after applying
// at most one in-effect offer. OriginalPrice always carries the undiscounted
// price so callers can render a strikethrough and a discount percentage.
type PriceQuote struct {
	Price           Cents      `json:"price_cents"`
	OriginalPrice   Cents      `json:"original_price_cents"`
	OfferApplied    bool       `json:"offer_applied"`
	OfferID         string     `json:"offer_id,omitempty"`
	VariantKey      VariantKey `json:"variant_key"`
	DiscountPercent int        `json:"discount_percent,omitempty"`
}

// ResolvePrice derives the effective unit price for a product and variant
// selection. The base price is the matching variant's price, or the
// product's flat price when the key is whole-product or matches no variant.
// An offer applies only when it targets the same product and the exact same
// variant key; inEffect must already be filtered to offers valid now.
//
// An offer that would raise the price above the base is ignored, so a stale
// discounted price can never make the product more expensive.
func ResolvePrice(product *Product, key VariantKey, inEffect []Offer) PriceQuote {
	base := product.PriceForScope(key)
	quote := PriceQuote{
		Price:         base,
		OriginalPrice: base,
		VariantKey:    key,
	}
	for i := range inEffect {
		offer := &inEffect[i]
		if offer.ProductID != product.ID || offer.VariantKey != key {
			continue
		}
		if offer.DiscountedPrice >= base {
			continue
		}
		quote.Price = offer.DiscountedPrice
		quote.OfferApplied = true
		quote.OfferID = offer.ID
		quote.DiscountPercent = DiscountPercent(base, offer.DiscountedPrice)
		break
	}
	return quote
}
