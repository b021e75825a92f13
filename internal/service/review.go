package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/event"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// ReviewService implements review submission and moderation. Reviews enter
// a pending queue; only approved reviews are public and counted toward a
// product's rating.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	ProductID string
	Rating    int
	Comment   string
}

// SubmitReview records a pending review for moderation.
func (s *ReviewService) SubmitReview(ctx context.Context, userID, userName string, input *SubmitReviewInput) (*domain.Review, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("review requires an authenticated customer")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, fmt.Errorf("get product for review: %w", err)
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    userID,
		UserName:  userName,
		Rating:    input.Rating,
		Comment:   input.Comment,
		Status:    domain.ReviewStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewSubmitted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.submitted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return review, nil
}

// ListProductReviews returns a product's approved reviews for the storefront.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	reviews, total, err := s.reviews.ListByProduct(ctx, productID, domain.ReviewStatusApproved, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list product reviews: %w", err)
	}
	return reviews, total, nil
}

// ListModerationQueue returns reviews awaiting or past moderation.
func (s *ReviewService) ListModerationQueue(ctx context.Context, status string, page, perPage int) ([]domain.Review, int, error) {
	if status == "" {
		status = domain.ReviewStatusPending
	}
	if !domain.ValidReviewStatus(status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("unknown review status %q", status))
	}

	reviews, total, err := s.reviews.ListByStatus(ctx, status, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list moderation queue: %w", err)
	}
	return reviews, total, nil
}

// ModerateReview moves a review to approved or rejected and refreshes the
// product's rating aggregate.
func (s *ReviewService) ModerateReview(ctx context.Context, id, status string) (*domain.Review, error) {
	if status != domain.ReviewStatusApproved && status != domain.ReviewStatusRejected {
		return nil, apperrors.InvalidInput("moderation status must be approved or rejected")
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for moderation: %w", err)
	}

	if err := s.reviews.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update review status: %w", err)
	}
	review.Status = status

	if err := s.refreshProductRating(ctx, review.ProductID); err != nil {
		s.logger.ErrorContext(ctx, "failed to refresh product rating",
			slog.String("product_id", review.ProductID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishReviewModerated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.moderated event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review moderated",
		slog.String("review_id", id),
		slog.String("status", status),
	)

	return review, nil
}

func (s *ReviewService) refreshProductRating(ctx context.Context, productID string) error {
	avg, count, err := s.reviews.RatingSummary(ctx, productID)
	if err != nil {
		return err
	}

	// Round to two decimals to match the stored precision.
	rounded := math.Round(avg*100) / 100

	return s.products.UpdateRating(ctx, productID, rounded, count)
}
