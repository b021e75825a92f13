package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/database"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, product_id, user_id, user_name, rating, comment, status, created_at, updated_at`

// Create inserts a new review. A user may review a product only once.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (
			id, product_id, user_id, user_name, rating, comment, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		rv.ID, rv.ProductID, rv.UserID, rv.UserName, rv.Rating, rv.Comment,
		rv.Status, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("review", "product_id", rv.ProductID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)

	var rv domain.Review
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating,
		&rv.Comment, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rv, nil
}

// ListByProduct returns a product's reviews in the given status, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID, status string, page, perPage int) ([]domain.Review, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM reviews
		WHERE product_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, reviewColumns)

	return r.queryReviews(ctx, query, productID, status, page, perPage)
}

// ListByStatus returns reviews in a moderation state, oldest first so the
// moderation queue is worked in arrival order.
func (r *ReviewRepository) ListByStatus(ctx context.Context, status string, page, perPage int) ([]domain.Review, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM reviews
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`, reviewColumns)

	limit, offset := limitOffset(page, perPage)

	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// UpdateStatus moves a review to a new moderation state.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE reviews
		SET status = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// RatingSummary aggregates approved reviews for a product.
func (r *ReviewRepository) RatingSummary(ctx context.Context, productID string) (float64, int, error) {
	var (
		avg   float64
		count int
	)

	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE product_id = $1 AND status = $2`,
		productID, domain.ReviewStatusApproved,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate review rating: %w", err)
	}

	return avg, count, nil
}

func (r *ReviewRepository) queryReviews(ctx context.Context, query, productID, status string, page, perPage int) ([]domain.Review, int, error) {
	limit, offset := limitOffset(page, perPage)

	rows, err := r.db.Query(ctx, query, productID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

func collectReviews(rows pgx.Rows) ([]domain.Review, int, error) {
	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating,
			&rv.Comment, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

func limitOffset(page, perPage int) (int, int) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	return limit, offset
}
