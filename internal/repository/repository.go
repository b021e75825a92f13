package repository

import (
	"context"
	"time"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
)

// ProductFilter narrows product listings. Nil fields are not applied.
type ProductFilter struct {
	CategoryID *string
	Search     *string
	InStock    *bool
	Page       int
	PerPage    int
}

// OfferFilter narrows offer listings for the admin view.
type OfferFilter struct {
	ProductID *string
	IsActive  *bool
	Page      int
	PerPage   int
}

// OrderFilter narrows order listings for the admin view.
type OrderFilter struct {
	UserID      *string
	IsPaid      *bool
	IsDelivered *bool
	Page        int
	PerPage     int
}

// ProductRepository provides access to product storage.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	UpdateRating(ctx context.Context, productID string, rating float64, reviewCount int) error
}

// CategoryRepository provides access to category storage.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// OfferRepository provides access to offer storage.
type OfferRepository interface {
	Create(ctx context.Context, o *domain.Offer) error
	GetByID(ctx context.Context, id string) (*domain.Offer, error)
	List(ctx context.Context, filter OfferFilter) ([]domain.Offer, int, error)
	// ListActiveByProduct returns every active offer for a product,
	// regardless of window, for conflict checking against a draft.
	ListActiveByProduct(ctx context.Context, productID string) ([]domain.Offer, error)
	// ListInEffect returns offers whose window covers the given instant,
	// boundaries included.
	ListInEffect(ctx context.Context, now time.Time) ([]domain.Offer, error)
	Update(ctx context.Context, o *domain.Offer) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository provides access to order storage.
type OrderRepository interface {
	// CreateWithStockDecrement persists the order, its items, and the
	// stock decrements in a single transaction. It fails with an
	// insufficient stock error and persists nothing when any product
	// cannot cover its quantity.
	CreateWithStockDecrement(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
	MarkPaid(ctx context.Context, id string, at time.Time) error
	MarkDelivered(ctx context.Context, id string, at time.Time) error
}

// ReviewRepository provides access to review storage.
type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID, status string, page, perPage int) ([]domain.Review, int, error)
	ListByStatus(ctx context.Context, status string, page, perPage int) ([]domain.Review, int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// RatingSummary aggregates approved reviews for a product.
	RatingSummary(ctx context.Context, productID string) (avg float64, count int, err error)
}

// OfferCache caches the in-effect offer view between writes.
type OfferCache interface {
	// Get returns the cached offers and whether the cache held a value.
	Get(ctx context.Context) ([]domain.Offer, bool, error)
	Set(ctx context.Context, offers []domain.Offer) error
	Invalidate(ctx context.Context) error
}

// CartRepository stores customer cart selections.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Clear(ctx context.Context, userID string) error
}
