package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	pkgkafka "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicOfferCreated    = "bakeshop.offer.created"
	TopicOfferUpdated    = "bakeshop.offer.updated"
	TopicOfferDeleted    = "bakeshop.offer.deleted"
	TopicOrderPlaced     = "bakeshop.order.placed"
	TopicReviewSubmitted = "bakeshop.review.submitted"
	TopicReviewModerated = "bakeshop.review.moderated"
)

// Aggregate type constants.
const (
	AggregateTypeOffer  = "offer"
	AggregateTypeOrder  = "order"
	AggregateTypeReview = "review"
)

// Source identifier for events originating from this service.
const SourceBakeshopAPI = "bakeshop-api"

// OfferEventData is the payload for offer lifecycle events.
type OfferEventData struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	VariantKey      string    `json:"variant_key"`
	DiscountedPrice int64     `json:"discounted_price_cents"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	IsActive        bool      `json:"is_active"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	ItemCount  int    `json:"item_count"`
	TotalCents int64  `json:"total_cents"`
}

// ReviewEventData is the payload for review events.
type ReviewEventData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Status    string `json:"status"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func offerData(o *domain.Offer) OfferEventData {
	return OfferEventData{
		ID:              o.ID,
		ProductID:       o.ProductID,
		VariantKey:      string(o.VariantKey),
		DiscountedPrice: int64(o.DiscountedPrice),
		StartDate:       o.StartDate,
		EndDate:         o.EndDate,
		IsActive:        o.IsActive,
	}
}

func (p *Producer) publishOffer(ctx context.Context, topic string, o *domain.Offer) error {
	event, err := pkgkafka.NewEvent(topic, o.ID, AggregateTypeOffer, SourceBakeshopAPI, offerData(o))
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published offer event",
		slog.String("topic", topic),
		slog.String("offer_id", o.ID),
	)

	return nil
}

// PublishOfferCreated publishes an offer.created event.
func (p *Producer) PublishOfferCreated(ctx context.Context, o *domain.Offer) error {
	return p.publishOffer(ctx, TopicOfferCreated, o)
}

// PublishOfferUpdated publishes an offer.updated event.
func (p *Producer) PublishOfferUpdated(ctx context.Context, o *domain.Offer) error {
	return p.publishOffer(ctx, TopicOfferUpdated, o)
}

// PublishOfferDeleted publishes an offer.deleted event.
func (p *Producer) PublishOfferDeleted(ctx context.Context, o *domain.Offer) error {
	return p.publishOffer(ctx, TopicOfferDeleted, o)
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, o *domain.Order) error {
	data := OrderPlacedData{
		ID:         o.ID,
		UserID:     o.UserID,
		ItemCount:  len(o.Items),
		TotalCents: int64(o.Totals.Total),
	}

	event, err := pkgkafka.NewEvent(TopicOrderPlaced, o.ID, AggregateTypeOrder, SourceBakeshopAPI, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPlaced, event); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("order_id", o.ID),
		slog.Int64("total_cents", data.TotalCents),
	)

	return nil
}

func (p *Producer) publishReview(ctx context.Context, topic string, rv *domain.Review) error {
	data := ReviewEventData{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Status:    rv.Status,
	}

	event, err := pkgkafka.NewEvent(topic, rv.ID, AggregateTypeReview, SourceBakeshopAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", rv.ID),
	)

	return nil
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, rv *domain.Review) error {
	return p.publishReview(ctx, TopicReviewSubmitted, rv)
}

// PublishReviewModerated publishes a review.moderated event.
func (p *Producer) PublishReviewModerated(ctx context.Context, rv *domain.Review) error {
	return p.publishReview(ctx, TopicReviewModerated, rv)
}
