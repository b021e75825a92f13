package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/auth"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/config"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/event"
	handler "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/handler/http"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository/postgres"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository/redis"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/service"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/migrations"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/database"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/health"
	pkgkafka "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/kafka"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/tracing"
)

// App wires together all dependencies and runs the bakeshop server.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	redisClient     *goredis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var tracingShutdown func(context.Context) error
	if cfg.OTELEnabled {
		traceCfg := tracing.DefaultConfig("bakeshop")
		traceCfg.Environment = cfg.Environment
		traceCfg.OTLPEndpoint = cfg.OTELEndpoint
		traceCfg.SampleRate = cfg.OTELSampleRate
		traceCfg.Enabled = true

		shutdown, err := tracing.InitTracer(ctx, traceCfg)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		tracingShutdown = shutdown
		logger.Info("tracing initialized", slog.String("endpoint", cfg.OTELEndpoint))
	}

	// PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	prometheus.MustRegister(database.NewPoolStatsCollector(pool, "bakeshop"))

	// Redis client for carts and the offer cache.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)))

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	cartRepo := redis.NewCartRepository(redisClient, cfg.CartTTL())
	offerCache := redis.NewOfferCache(redisClient, cfg.OfferCacheTTL())

	eventProducer := event.NewProducer(producer, logger)

	offerService := service.NewOfferService(offerRepo, productRepo, offerCache, eventProducer, logger)
	productService := service.NewProductService(productRepo, offerService, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, offerService, eventProducer, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, eventProducer, logger)
	cartService := service.NewCartService(cartRepo, productRepo, offerService, orderService, logger)

	// Health checks. Event publishing is best-effort, so the kafka
	// producer does not gate readiness.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// HTTP router.
	router := handler.NewRouter(handler.Services{
		Products:   productService,
		Categories: categoryService,
		Offers:     offerService,
		Orders:     orderService,
		Reviews:    reviewService,
		Carts:      cartService,
	}, healthHandler, auth.NewTokenValidator(cfg.JWTSecret), logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		redisClient:     redisClient,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis client close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
