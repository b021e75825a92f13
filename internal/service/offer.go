package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/event"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// OfferService implements the business logic for promotional offers. Admin
// reads go straight to storage; the storefront's in-effect view is served
// through the cache, which every offer write invalidates.
type OfferService struct {
	offers   repository.OfferRepository
	products repository.ProductRepository
	cache    repository.OfferCache
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewOfferService creates a new offer service.
func NewOfferService(
	offers repository.OfferRepository,
	products repository.ProductRepository,
	cache repository.OfferCache,
	producer *event.Producer,
	logger *slog.Logger,
) *OfferService {
	return &OfferService{
		offers:   offers,
		products: products,
		cache:    cache,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateOfferInput holds the parameters for creating an offer.
type CreateOfferInput struct {
	ProductID       string
	VariantKey      string
	DiscountedPrice int64
	StartDate       time.Time
	EndDate         time.Time
	IsActive        bool
}

// UpdateOfferInput holds the parameters for updating an offer. Nil fields
// keep their current value.
type UpdateOfferInput struct {
	VariantKey      *string
	DiscountedPrice *int64
	StartDate       *time.Time
	EndDate         *time.Time
	IsActive        *bool
}

// CreateOffer validates a new offer against its product and the existing
// offers in the same scope, then persists and announces it.
func (s *OfferService) CreateOffer(ctx context.Context, input *CreateOfferInput) (*domain.Offer, error) {
	draft := domain.OfferDraft{
		ProductID:       input.ProductID,
		VariantKey:      domain.VariantKey(input.VariantKey),
		DiscountedPrice: domain.Cents(input.DiscountedPrice),
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		IsActive:        input.IsActive,
	}

	if err := s.validateDraft(ctx, draft); err != nil {
		return nil, err
	}

	now := s.now()
	offer := &domain.Offer{
		ID:              uuid.New().String(),
		ProductID:       draft.ProductID,
		VariantKey:      draft.VariantKey,
		DiscountedPrice: draft.DiscountedPrice,
		StartDate:       draft.StartDate,
		EndDate:         draft.EndDate,
		IsActive:        draft.IsActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	s.invalidateCache(ctx)

	if err := s.producer.PublishOfferCreated(ctx, offer); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish offer.created event",
			slog.String("offer_id", offer.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "offer created",
		slog.String("offer_id", offer.ID),
		slog.String("product_id", offer.ProductID),
		slog.String("variant_key", string(offer.VariantKey)),
	)

	return offer, nil
}

// GetOffer retrieves an offer by its ID.
func (s *OfferService) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get offer by id: %w", err)
	}
	return offer, nil
}

// ListOffers returns a filtered, paginated admin view of offers, straight
// from storage so a just-written offer is always visible.
func (s *OfferService) ListOffers(ctx context.Context, filter repository.OfferFilter) ([]domain.Offer, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	offers, total, err := s.offers.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}

	return offers, total, nil
}

// ListInEffect returns the offers currently applying to storefront prices.
// The view is cached; on a hit the window check is re-evaluated against the
// current clock so an offer that expired inside the cache TTL never leaks.
func (s *OfferService) ListInEffect(ctx context.Context) ([]domain.Offer, error) {
	now := s.now()

	cached, hit, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "offer cache read failed, falling back to storage",
			slog.String("error", err.Error()),
		)
	} else if hit {
		return filterInEffect(cached, now), nil
	}

	offers, err := s.offers.ListInEffect(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list in-effect offers: %w", err)
	}

	if err := s.cache.Set(ctx, offers); err != nil {
		s.logger.WarnContext(ctx, "offer cache write failed",
			slog.String("error", err.Error()),
		)
	}

	return offers, nil
}

// StorefrontOffer joins an in-effect offer with its product so the
// storefront can render the promotion without further lookups.
type StorefrontOffer struct {
	domain.Offer
	ProductName     string       `json:"product_name"`
	ProductSlug     string       `json:"product_slug"`
	ProductImages   []string     `json:"product_images"`
	CategoryID      string       `json:"category_id"`
	OriginalPrice   domain.Cents `json:"original_price_cents"`
	DiscountPercent int          `json:"discount_percent"`
}

// ListInEffectViews returns the storefront promotion listing: each in-effect
// offer joined with its product and the discount relative to the price the
// offer undercuts. An offer whose product has disappeared is skipped rather
// than failing the whole listing.
func (s *OfferService) ListInEffectViews(ctx context.Context) ([]StorefrontOffer, error) {
	offers, err := s.ListInEffect(ctx)
	if err != nil {
		return nil, err
	}

	products := make(map[string]*domain.Product, len(offers))
	views := make([]StorefrontOffer, 0, len(offers))
	for i := range offers {
		offer := &offers[i]

		product, ok := products[offer.ProductID]
		if !ok {
			product, err = s.products.GetByID(ctx, offer.ProductID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					s.logger.WarnContext(ctx, "in-effect offer references a missing product",
						slog.String("offer_id", offer.ID),
						slog.String("product_id", offer.ProductID),
					)
					continue
				}
				return nil, fmt.Errorf("load product for offer view: %w", err)
			}
			products[offer.ProductID] = product
		}

		original := product.PriceForScope(offer.VariantKey)
		views = append(views, StorefrontOffer{
			Offer:           *offer,
			ProductName:     product.Name,
			ProductSlug:     product.Slug,
			ProductImages:   product.Images,
			CategoryID:      product.CategoryID,
			OriginalPrice:   original,
			DiscountPercent: domain.DiscountPercent(original, offer.DiscountedPrice),
		})
	}

	return views, nil
}

// UpdateOffer applies partial updates to an offer, re-running the full
// validation and conflict check on the resulting state.
func (s *OfferService) UpdateOffer(ctx context.Context, id string, input *UpdateOfferInput) (*domain.Offer, error) {
	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get offer for update: %w", err)
	}

	// A pure deactivation always goes through, even when the product's
	// price or variants have drifted since the offer was created.
	deactivationOnly := input.IsActive != nil && !*input.IsActive &&
		input.VariantKey == nil && input.DiscountedPrice == nil &&
		input.StartDate == nil && input.EndDate == nil

	if input.VariantKey != nil {
		offer.VariantKey = domain.VariantKey(*input.VariantKey)
	}
	if input.DiscountedPrice != nil {
		offer.DiscountedPrice = domain.Cents(*input.DiscountedPrice)
	}
	if input.StartDate != nil {
		offer.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		offer.EndDate = *input.EndDate
	}
	if input.IsActive != nil {
		offer.IsActive = *input.IsActive
	}

	if !deactivationOnly {
		draft := domain.OfferDraft{
			ID:              offer.ID,
			ProductID:       offer.ProductID,
			VariantKey:      offer.VariantKey,
			DiscountedPrice: offer.DiscountedPrice,
			StartDate:       offer.StartDate,
			EndDate:         offer.EndDate,
			IsActive:        offer.IsActive,
		}

		if err := s.validateDraft(ctx, draft); err != nil {
			return nil, err
		}
	}

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}

	s.invalidateCache(ctx)

	if err := s.producer.PublishOfferUpdated(ctx, offer); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish offer.updated event",
			slog.String("offer_id", offer.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "offer updated", slog.String("offer_id", offer.ID))

	return offer, nil
}

// DeleteOffer removes an offer and drops it from storefront prices.
func (s *OfferService) DeleteOffer(ctx context.Context, id string) error {
	offer, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get offer for delete: %w", err)
	}

	if err := s.offers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}

	s.invalidateCache(ctx)

	if err := s.producer.PublishOfferDeleted(ctx, offer); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish offer.deleted event",
			slog.String("offer_id", offer.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "offer deleted", slog.String("offer_id", id))

	return nil
}

// validateDraft runs the intrinsic checks, verifies the scope against the
// product, and rejects window conflicts with other active offers.
func (s *OfferService) validateDraft(ctx context.Context, draft domain.OfferDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	product, err := s.products.GetByID(ctx, draft.ProductID)
	if err != nil {
		return fmt.Errorf("get product for offer: %w", err)
	}

	if !draft.VariantKey.IsWholeProduct() {
		if _, ok := product.VariantByKey(draft.VariantKey); !ok {
			return apperrors.InvalidInput(fmt.Sprintf(
				"product %q has no variant %q", product.Name, string(draft.VariantKey),
			))
		}
	}

	base := product.PriceForScope(draft.VariantKey)
	if draft.DiscountedPrice >= base {
		return apperrors.InvalidInput(fmt.Sprintf(
			"discounted price %s must be below the current price %s",
			draft.DiscountedPrice, base,
		))
	}

	existing, err := s.offers.ListActiveByProduct(ctx, draft.ProductID)
	if err != nil {
		return fmt.Errorf("list offers for conflict check: %w", err)
	}

	return domain.CheckConflict(draft, existing)
}

func (s *OfferService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate offer cache",
			slog.String("error", err.Error()),
		)
	}
}

func filterInEffect(offers []domain.Offer, now time.Time) []domain.Offer {
	result := make([]domain.Offer, 0, len(offers))
	for i := range offers {
		if offers[i].InEffect(now) {
			result = append(result, offers[i])
		}
	}
	return result
}
