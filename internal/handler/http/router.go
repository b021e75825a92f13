package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/service"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/health"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/middleware"
)

// Services bundles the service layer handed to the router.
type Services struct {
	Products   *service.ProductService
	Categories *service.CategoryService
	Offers     *service.OfferService
	Orders     *service.OrderService
	Reviews    *service.ReviewService
	Carts      *service.CartService
}

// NewRouter creates a chi router with all storefront and admin routes
// registered. Public catalog routes need no token; cart, order and review
// submission routes need a customer token; everything under /admin needs
// the admin role.
func NewRouter(
	services Services,
	healthHandler *health.Handler,
	validateToken middleware.TokenValidator,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("bakeshop"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(services.Products, services.Categories, logger)
	offerHandler := NewOfferHandler(services.Offers, logger)
	orderHandler := NewOrderHandler(services.Orders, logger)
	reviewHandler := NewReviewHandler(services.Reviews, logger)
	cartHandler := NewCartHandler(services.Carts, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public storefront endpoints
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{idOrSlug}", productHandler.GetProduct)
		r.Get("/products/{id}/reviews", reviewHandler.ListProductReviews)
		r.Get("/categories", productHandler.ListCategories)
		r.With(middleware.CacheControl(60)).Get("/offers", offerHandler.ListInEffect)
		r.Post("/pricing/quote", productHandler.QuotePrice)

		// Customer endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validateToken))
			r.Use(middleware.RequireRole(middleware.RoleCustomer, middleware.RoleAdmin))

			r.Post("/products/{id}/reviews", reviewHandler.SubmitReview)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items", cartHandler.UpdateItem)
				r.Post("/checkout", cartHandler.Checkout)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.PlaceOrder)
				r.Get("/", orderHandler.ListMyOrders)
				r.Get("/{id}", orderHandler.GetOrder)
			})
		})

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(validateToken))
			r.Use(middleware.RequireRole(middleware.RoleAdmin))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", productHandler.CreateProduct)
				r.Put("/{id}", productHandler.UpdateProduct)
				r.Delete("/{id}", productHandler.DeleteProduct)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", productHandler.CreateCategory)
				r.Put("/{id}", productHandler.UpdateCategory)
				r.Delete("/{id}", productHandler.DeleteCategory)
			})

			r.Route("/offers", func(r chi.Router) {
				r.Post("/", offerHandler.CreateOffer)
				r.Get("/", offerHandler.ListOffers)
				r.Get("/{id}", offerHandler.GetOffer)
				r.Put("/{id}", offerHandler.UpdateOffer)
				r.Delete("/{id}", offerHandler.DeleteOffer)
				r.Post("/{id}/activate", offerHandler.ActivateOffer)
				r.Post("/{id}/deactivate", offerHandler.DeactivateOffer)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Post("/{id}/pay", orderHandler.MarkPaid)
				r.Post("/{id}/deliver", orderHandler.MarkDelivered)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", reviewHandler.ListModerationQueue)
				r.Post("/{id}/moderate", reviewHandler.ModerateReview)
			})
		})
	})

	return r
}

// ContentTypeJSON sets the response content type for API routes.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
