package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/event"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/service"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/health"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/httputil"
	pkgkafka "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/kafka"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/middleware"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) UpdateRating(ctx context.Context, productID string, rating float64, reviewCount int) error {
	args := m.Called(ctx, productID, rating, reviewCount)
	return args.Error(0)
}

type mockOfferRepository struct {
	mock.Mock
}

func (m *mockOfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOfferRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *mockOfferRepository) List(ctx context.Context, filter repository.OfferFilter) ([]domain.Offer, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Offer), args.Int(1), args.Error(2)
}

func (m *mockOfferRepository) ListActiveByProduct(ctx context.Context, productID string) ([]domain.Offer, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.Offer), args.Error(1)
}

func (m *mockOfferRepository) ListInEffect(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Offer), args.Error(1)
}

func (m *mockOfferRepository) Update(ctx context.Context, o *domain.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOfferRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOfferCache struct {
	mock.Mock
}

func (m *mockOfferCache) Get(ctx context.Context) ([]domain.Offer, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.Offer), args.Bool(1), args.Error(2)
}

func (m *mockOfferCache) Set(ctx context.Context, offers []domain.Offer) error {
	args := m.Called(ctx, offers)
	return args.Error(0)
}

func (m *mockOfferCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) CreateWithStockDecrement(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	args := m.Called(ctx, userID, page, perPage)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) MarkPaid(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockOrderRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	args := m.Called(ctx, rv)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID, status string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, productID, status, page, perPage)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) ListByStatus(ctx context.Context, status string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, status, page, perPage)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockReviewRepository) RatingSummary(ctx context.Context, productID string) (float64, int, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// ============================================================================
// Test helpers
// ============================================================================

const (
	testCustomerID = "550e8400-e29b-41d4-a716-446655440100"
	testProductID  = "550e8400-e29b-41d4-a716-446655440001"
	testOfferID    = "550e8400-e29b-41d4-a716-446655440002"
	testOrderID    = "550e8400-e29b-41d4-a716-446655440003"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaCfg.MaxAttempts = 1
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

// testTokenValidator maps well-known test tokens to claims so router tests
// exercise the real auth middleware.
func testTokenValidator(token string) (*middleware.Claims, error) {
	switch token {
	case "customer-token":
		return &middleware.Claims{
			UserID: testCustomerID,
			Name:   "Dorcas W.",
			Role:   middleware.RoleCustomer,
		}, nil
	case "admin-token":
		return &middleware.Claims{
			UserID: "550e8400-e29b-41d4-a716-446655440200",
			Name:   "Admin",
			Role:   middleware.RoleAdmin,
		}, nil
	default:
		return nil, errInvalidTestToken
	}
}

type testTokenError string

func (e testTokenError) Error() string { return string(e) }

const errInvalidTestToken = testTokenError("unknown test token")

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// routerMocks bundles every mock behind a production-shaped router.
type routerMocks struct {
	products *mockProductRepository
	offers   *mockOfferRepository
	cache    *mockOfferCache
	orders   *mockOrderRepository
	reviews  *mockReviewRepository
	carts    *mockCartRepository
}

func newRouterMocks() *routerMocks {
	return &routerMocks{
		products: new(mockProductRepository),
		offers:   new(mockOfferRepository),
		cache:    new(mockOfferCache),
		orders:   new(mockOrderRepository),
		reviews:  new(mockReviewRepository),
		carts:    new(mockCartRepository),
	}
}

// newTestRouter wires real services over mock repositories behind the
// production route tree, including auth middleware.
func newTestRouter(m *routerMocks) http.Handler {
	logger := testLogger()
	producer := testEventProducer()

	offerService := service.NewOfferService(m.offers, m.products, m.cache, producer, logger)
	productService := service.NewProductService(m.products, offerService, logger)
	categoryService := service.NewCategoryService(new(mockCategoryRepository), logger)
	orderService := service.NewOrderService(m.orders, m.products, offerService, producer, logger)
	reviewService := service.NewReviewService(m.reviews, m.products, producer, logger)
	cartService := service.NewCartService(m.carts, m.products, offerService, orderService, logger)

	return NewRouter(Services{
		Products:   productService,
		Categories: categoryService,
		Offers:     offerService,
		Orders:     orderService,
		Reviews:    reviewService,
		Carts:      cartService,
	}, health.NewHandler(), testTokenValidator, logger)
}

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// sampleProduct returns a product with a flat price and two weight variants.
func sampleProduct() *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:          testProductID,
		Name:        "Chocolate Fudge Cake",
		Slug:        "chocolate-fudge-cake",
		Description: "Rich dark chocolate layers.",
		Price:       1500,
		Stock:       10,
		Images:      []string{"https://cdn.example.com/fudge.jpg"},
		Variants: []domain.PriceVariant{
			{Weight: "500G", Price: 900},
			{Weight: "1KG", Price: 1500},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// sampleOffer returns an active offer covering the sample product's 1KG
// variant for the next week.
func sampleOffer() *domain.Offer {
	now := time.Now().UTC()
	return &domain.Offer{
		ID:              testOfferID,
		ProductID:       testProductID,
		VariantKey:      "1KG",
		DiscountedPrice: 1200,
		StartDate:       now.Add(-time.Hour),
		EndDate:         now.Add(7 * 24 * time.Hour),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
