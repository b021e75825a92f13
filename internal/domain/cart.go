package domain

// CartLine is one product selection in a customer's cart. It carries only
// the selection, never a price: prices are derived fresh at read and at
// checkout.
type CartLine struct {
	ProductID  string     `json:"product_id"`
	VariantKey VariantKey `json:"variant_key"`
	Quantity   int        `json:"quantity"`
}

// Cart is a customer's current selection keyed by user.
type Cart struct {
	UserID string     `json:"user_id"`
	Lines  []CartLine `json:"lines"`
}

// LineKey identifies a cart line within a cart: one line per product and
// variant combination.
func (l CartLine) LineKey() string {
	return l.ProductID + "|" + string(l.VariantKey)
}
