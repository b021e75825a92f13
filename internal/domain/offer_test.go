package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
}

func activeOffer(id, productID string, key VariantKey, start, end time.Time) Offer {
	return Offer{
		ID:              id,
		ProductID:       productID,
		VariantKey:      key,
		DiscountedPrice: 800,
		StartDate:       start,
		EndDate:         end,
		IsActive:        true,
	}
}

func TestOfferInEffect(t *testing.T) {
	offer := activeOffer("o1", "p1", WholeProduct, day(5), day(10))

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before window", day(4), false},
		{"at start boundary", day(5), true},
		{"inside window", day(7), true},
		{"at end boundary", day(10), true},
		{"after window", day(11), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, offer.InEffect(tt.now))
		})
	}
}

func TestOfferInEffectInactive(t *testing.T) {
	offer := activeOffer("o1", "p1", WholeProduct, day(5), day(10))
	offer.IsActive = false
	assert.False(t, offer.InEffect(day(7)))
}

func TestOfferOverlapsIsSymmetric(t *testing.T) {
	a := activeOffer("a", "p1", WholeProduct, day(1), day(10))
	b := activeOffer("b", "p1", WholeProduct, day(5), day(15))

	assert.True(t, a.Overlaps(b.StartDate, b.EndDate))
	assert.True(t, b.Overlaps(a.StartDate, a.EndDate))
}

func TestOfferOverlapsTouchingEndpoints(t *testing.T) {
	a := activeOffer("a", "p1", WholeProduct, day(1), day(10))

	assert.True(t, a.Overlaps(day(10), day(20)), "shared boundary day counts as overlap")
	assert.False(t, a.Overlaps(day(11), day(20)))
}

func TestCheckConflict(t *testing.T) {
	existing := []Offer{
		activeOffer("o1", "p1", WholeProduct, day(1), day(10)),
		activeOffer("o2", "p1", "1KG", day(1), day(10)),
		activeOffer("o3", "p2", WholeProduct, day(1), day(10)),
	}

	draft := func(key VariantKey, start, end time.Time) OfferDraft {
		return OfferDraft{
			ProductID:       "p1",
			VariantKey:      key,
			DiscountedPrice: 500,
			StartDate:       start,
			EndDate:         end,
			IsActive:        true,
		}
	}

	tests := []struct {
		name     string
		draft    OfferDraft
		conflict bool
	}{
		{"overlapping window same scope", draft(WholeProduct, day(5), day(15)), true},
		{"touching end boundary same scope", draft(WholeProduct, day(10), day(20)), true},
		{"disjoint window same scope", draft(WholeProduct, day(11), day(20)), false},
		{"same window different variant", draft("500G", day(1), day(10)), false},
		{"variant offer does not clash with whole-product offer", draft("250G", day(1), day(10)), false},
		{"overlapping window same variant", draft("1KG", day(8), day(12)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConflict(tt.draft, existing)
			if tt.conflict {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrOfferConflict))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckConflictIgnoresSelf(t *testing.T) {
	existing := []Offer{activeOffer("o1", "p1", WholeProduct, day(1), day(10))}

	draft := OfferDraft{
		ID:              "o1",
		ProductID:       "p1",
		VariantKey:      WholeProduct,
		DiscountedPrice: 500,
		StartDate:       day(2),
		EndDate:         day(12),
		IsActive:        true,
	}

	assert.NoError(t, CheckConflict(draft, existing))
}

func TestCheckConflictIgnoresInactiveExisting(t *testing.T) {
	inactive := activeOffer("o1", "p1", WholeProduct, day(1), day(10))
	inactive.IsActive = false

	draft := OfferDraft{
		ProductID:       "p1",
		VariantKey:      WholeProduct,
		DiscountedPrice: 500,
		StartDate:       day(5),
		EndDate:         day(15),
		IsActive:        true,
	}

	assert.NoError(t, CheckConflict(draft, []Offer{inactive}))
}

func TestCheckConflictDeactivationAlwaysAllowed(t *testing.T) {
	existing := []Offer{activeOffer("o1", "p1", WholeProduct, day(1), day(10))}

	draft := OfferDraft{
		ID:              "o2",
		ProductID:       "p1",
		VariantKey:      WholeProduct,
		DiscountedPrice: 500,
		StartDate:       day(5),
		EndDate:         day(15),
		IsActive:        false,
	}

	assert.NoError(t, CheckConflict(draft, existing))
}

func TestOfferDraftValidate(t *testing.T) {
	valid := OfferDraft{
		ProductID:       "p1",
		DiscountedPrice: 500,
		StartDate:       day(1),
		EndDate:         day(10),
	}

	tests := []struct {
		name   string
		mutate func(*OfferDraft)
		ok     bool
	}{
		{"valid draft", func(*OfferDraft) {}, true},
		{"missing product", func(d *OfferDraft) { d.ProductID = "" }, false},
		{"zero price", func(d *OfferDraft) { d.DiscountedPrice = 0 }, false},
		{"negative price", func(d *OfferDraft) { d.DiscountedPrice = -100 }, false},
		{"end equals start", func(d *OfferDraft) { d.EndDate = d.StartDate }, false},
		{"end before start", func(d *OfferDraft) { d.EndDate = day(0) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := valid
			tt.mutate(&draft)
			err := draft.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
			}
		})
	}
}
