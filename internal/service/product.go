package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/slug"
)

// ProductService implements catalog management and storefront price quoting.
type ProductService struct {
	products repository.ProductRepository
	offers   OfferView
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, offers OfferView, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		offers:   offers,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	CategoryID  string
	Price       int64
	Stock       int
	Images      []string
	Variants    []domain.PriceVariant
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// keep their current value.
type UpdateProductInput struct {
	Name        *string
	Description *string
	CategoryID  *string
	Price       *int64
	Stock       *int
	Images      []string
	Variants    []domain.PriceVariant
}

// PricedVariant pairs a variant with its effective price quote.
type PricedVariant struct {
	Weight string            `json:"weight"`
	Quote  domain.PriceQuote `json:"quote"`
}

// PricedProduct is the storefront view of a product: the stored record plus
// the effective prices after in-effect offers.
type PricedProduct struct {
	domain.Product
	Quote    domain.PriceQuote `json:"quote"`
	Variants []PricedVariant   `json:"variant_quotes"`
}

// CreateProduct creates a new catalog product.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("product price must not be negative")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("product stock must not be negative")
	}
	if err := domain.ValidateVariants(input.Variants); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Price:       domain.Cents(input.Price),
		Stock:       input.Stock,
		Images:      input.Images,
		Variants:    input.Variants,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if product.Variants == nil {
		product.Variants = []domain.PriceVariant{}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// GetPricedProduct retrieves a product with its effective prices. The
// argument is treated as an ID when it parses as a UUID, otherwise as a slug.
func (s *ProductService) GetPricedProduct(ctx context.Context, idOrSlug string) (*PricedProduct, error) {
	var (
		product *domain.Product
		err     error
	)
	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.products.GetByID(ctx, idOrSlug)
	} else {
		product, err = s.products.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", idOrSlug, err)
	}

	inEffect, err := s.offers.ListInEffect(ctx)
	if err != nil {
		return nil, fmt.Errorf("load in-effect offers: %w", err)
	}

	priced := priceProduct(product, inEffect)
	return &priced, nil
}

// QuotePrice resolves the effective unit price for one product and variant
// selection against the offers in effect right now. The selection must name
// an existing variant, or the whole product with an empty key.
func (s *ProductService) QuotePrice(ctx context.Context, productID, variantKey string) (*domain.PriceQuote, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product for quote: %w", err)
	}

	key := domain.VariantKey(variantKey)
	if !key.IsWholeProduct() {
		if _, ok := product.VariantByKey(key); !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf(
				"product %q has no variant %q", product.Name, variantKey,
			))
		}
	}

	inEffect, err := s.offers.ListInEffect(ctx)
	if err != nil {
		return nil, fmt.Errorf("load in-effect offers: %w", err)
	}

	quote := domain.ResolvePrice(product, key, inEffect)
	return &quote, nil
}

// ListPricedProducts returns the storefront catalog page with effective
// prices. The offer view is loaded once for the whole page.
func (s *ProductService) ListPricedProducts(ctx context.Context, filter repository.ProductFilter) ([]PricedProduct, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	inEffect, err := s.offers.ListInEffect(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load in-effect offers: %w", err)
	}

	priced := make([]PricedProduct, 0, len(products))
	for i := range products {
		priced = append(priced, priceProduct(&products[i], inEffect))
	}

	return priced, total, nil
}

// UpdateProduct applies partial updates to a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("product price must not be negative")
		}
		product.Price = domain.Cents(*input.Price)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.InvalidInput("product stock must not be negative")
		}
		product.Stock = *input.Stock
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Variants != nil {
		if err := domain.ValidateVariants(input.Variants); err != nil {
			return nil, err
		}
		product.Variants = input.Variants
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", id))

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

func priceProduct(product *domain.Product, inEffect []domain.Offer) PricedProduct {
	priced := PricedProduct{
		Product: *product,
		Quote:   domain.ResolvePrice(product, domain.WholeProduct, inEffect),
	}

	priced.Variants = make([]PricedVariant, 0, len(product.Variants))
	for _, v := range product.Variants {
		priced.Variants = append(priced.Variants, PricedVariant{
			Weight: v.Weight,
			Quote:  domain.ResolvePrice(product, domain.VariantKey(v.Weight), inEffect),
		})
	}

	return priced
}
