package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/database"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// OfferRepository implements repository.OfferRepository using PostgreSQL.
// The offers table carries an exclusion constraint over (product_id,
// variant_key, validity range) for active rows, so a conflicting write that
// races past the service-level check still fails here.
type OfferRepository struct {
	db database.DBTX
}

// NewOfferRepository creates a new PostgreSQL-backed offer repository.
func NewOfferRepository(db database.DBTX) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `id, product_id, variant_key, discounted_price_cents,
	start_date, end_date, is_active, created_at, updated_at`

// Create inserts a new offer.
func (r *OfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	query := `
		INSERT INTO offers (
			id, product_id, variant_key, discounted_price_cents,
			start_date, end_date, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		o.ID,
		o.ProductID,
		string(o.VariantKey),
		int64(o.DiscountedPrice),
		o.StartDate,
		o.EndDate,
		o.IsActive,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return apperrors.OfferConflict("an active offer already covers this product scope and window")
		}
		return fmt.Errorf("insert offer: %w", err)
	}

	return nil
}

// GetByID retrieves an offer by its ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	query := fmt.Sprintf(`SELECT %s FROM offers WHERE id = $1`, offerColumns)

	o, err := scanOfferFields(r.db.QueryRow(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan offer: %w", err)
	}
	return o, nil
}

// List returns offers matching the filter with the total count.
func (r *OfferRepository) List(ctx context.Context, filter repository.OfferFilter) ([]domain.Offer, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argIndex))
		args = append(args, *filter.ProductID)
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM offers
		%s
		ORDER BY start_date DESC
		LIMIT $%d OFFSET $%d`,
		offerColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var (
		offers     []domain.Offer
		totalCount int
	)

	for rows.Next() {
		o, err := scanOfferFields(func(dest ...any) error {
			dest = append(dest, &totalCount)
			return rows.Scan(dest...)
		})
		if err != nil {
			return nil, 0, fmt.Errorf("scan offer row: %w", err)
		}
		offers = append(offers, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate offer rows: %w", err)
	}

	if offers == nil {
		offers = []domain.Offer{}
	}

	return offers, totalCount, nil
}

// ListActiveByProduct returns every active offer for a product, any window.
func (r *OfferRepository) ListActiveByProduct(ctx context.Context, productID string) ([]domain.Offer, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM offers
		WHERE product_id = $1 AND is_active
		ORDER BY start_date`, offerColumns)

	return r.queryOffers(ctx, query, productID)
}

// ListInEffect returns active offers whose window covers the instant,
// boundaries included.
func (r *OfferRepository) ListInEffect(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM offers
		WHERE is_active AND start_date <= $1 AND end_date >= $1
		ORDER BY product_id, variant_key`, offerColumns)

	return r.queryOffers(ctx, query, now)
}

// Update modifies an existing offer.
func (r *OfferRepository) Update(ctx context.Context, o *domain.Offer) error {
	o.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE offers
		SET product_id = $1, variant_key = $2, discounted_price_cents = $3,
		    start_date = $4, end_date = $5, is_active = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		o.ProductID,
		string(o.VariantKey),
		int64(o.DiscountedPrice),
		o.StartDate,
		o.EndDate,
		o.IsActive,
		o.UpdatedAt,
		o.ID,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return apperrors.OfferConflict("an active offer already covers this product scope and window")
		}
		return fmt.Errorf("update offer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("offer", o.ID)
	}

	return nil
}

// Delete removes an offer.
func (r *OfferRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("offer", id)
	}
	return nil
}

func (r *OfferRepository) queryOffers(ctx context.Context, query string, args ...any) ([]domain.Offer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		o, err := scanOfferFields(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan offer row: %w", err)
		}
		offers = append(offers, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offer rows: %w", err)
	}

	if offers == nil {
		offers = []domain.Offer{}
	}

	return offers, nil
}

func scanOfferFields(scan func(dest ...any) error) (*domain.Offer, error) {
	var (
		o          domain.Offer
		variantKey string
		price      int64
	)

	if err := scan(
		&o.ID,
		&o.ProductID,
		&variantKey,
		&price,
		&o.StartDate,
		&o.EndDate,
		&o.IsActive,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	o.VariantKey = domain.VariantKey(variantKey)
	o.DiscountedPrice = domain.Cents(price)

	return &o, nil
}
