package domain

import (
	"fmt"
	"time"

	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// Offer is a time-bounded promotional price for a product or one of its
// variants. VariantKey scopes the offer: the empty key covers the whole
// product, any other value covers exactly the variant whose weight label
// matches it.
type Offer struct {
	ID              string     `json:"id"`
	ProductID       string     `json:"product_id"`
	VariantKey      VariantKey `json:"variant_key"`
	DiscountedPrice Cents      `json:"discounted_price_cents"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OfferDraft is the candidate state of an offer being created or updated,
// checked for validity and conflicts before it is persisted. ID is empty for
// a create and set for an update so the offer never conflicts with itself.
type OfferDraft struct {
	ID              string
	ProductID       string
	VariantKey      VariantKey
	DiscountedPrice Cents
	StartDate       time.Time
	EndDate         time.Time
	IsActive        bool
}

// InEffect reports whether the offer applies at the given instant. Both
// window boundaries are included: an offer ending at midnight still applies
// at exactly midnight.
func (o *Offer) InEffect(now time.Time) bool {
	return o.IsActive && !now.Before(o.StartDate) && !now.After(o.EndDate)
}

// Overlaps reports whether two closed date windows share at least one
// instant. Touching endpoints count as overlap.
func (o *Offer) Overlaps(start, end time.Time) bool {
	return !o.StartDate.After(end) && !start.After(o.EndDate)
}

// scopeLabel names the offer scope for conflict messages.
func scopeLabel(key VariantKey) string {
	if key.IsWholeProduct() {
		return "the whole product"
	}
	return fmt.Sprintf("variant %q", string(key))
}

// Validate checks the draft's intrinsic invariants, independent of any other
// offer: a positive discounted price and a well-ordered window.
func (d OfferDraft) Validate() error {
	if d.ProductID == "" {
		return apperrors.InvalidInput("offer product_id is required")
	}
	if d.DiscountedPrice <= 0 {
		return apperrors.InvalidInput("discounted price must be positive")
	}
	if !d.EndDate.After(d.StartDate) {
		return apperrors.InvalidInput("offer end date must be after start date")
	}
	return nil
}

// CheckConflict rejects the draft when an active offer in the same scope has
// a window overlapping the draft's. Scope comparison is exact: a
// whole-product offer and a variant offer on the same product never
// conflict, and two different variant keys never conflict. Inactive
// existing offers are ignored, and a draft being deactivated is always
// allowed through.
func CheckConflict(draft OfferDraft, existing []Offer) error {
	if !draft.IsActive {
		return nil
	}
	for i := range existing {
		other := &existing[i]
		if other.ID == draft.ID {
			continue
		}
		if other.ProductID != draft.ProductID || other.VariantKey != draft.VariantKey {
			continue
		}
		if !other.IsActive {
			continue
		}
		if other.Overlaps(draft.StartDate, draft.EndDate) {
			return apperrors.OfferConflict(fmt.Sprintf(
				"an active offer for %s already covers %s to %s",
				scopeLabel(draft.VariantKey),
				other.StartDate.Format(time.RFC3339),
				other.EndDate.Format(time.RFC3339),
			))
		}
	}
	return nil
}
