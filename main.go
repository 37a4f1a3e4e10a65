package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/ratelimit"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.AppEnv)
	defer logger.Sync()
	log := logger.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger.Named("rabbitmq"))
		if err != nil {
			log.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		if err := mqClient.ConsumeOrderEvents(rabbitmq.OrderEventLogger(logger.Named("order-events"))); err != nil {
			log.Error("failed to start order event consumer", zap.Error(err))
		}
		publisher = mqClient
	} else {
		log.Info("RABBITMQ_URL not set, order events disabled")
	}

	var images repositories.ImageStore
	if cfg.Storage.Bucket != "" {
		images, err = repositories.NewS3ImageStoreFromEnv(ctx, repositories.S3Options{
			Bucket:        cfg.Storage.Bucket,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			Region:        cfg.Storage.Region,
			Endpoint:      cfg.Storage.Endpoint,
		})
		if err != nil {
			log.Fatal("failed to initialize image storage", zap.Error(err))
		}
	} else {
		log.Info("S3_BUCKET not set, image uploads disabled")
	}

	app, err := newApp(ctx, cfg, dependencies{
		DB:        db,
		Redis:     rdb,
		Publisher: publisher,
		Images:    images,
	})
	if err != nil {
		log.Fatal("failed to create app", zap.Error(err))
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}

// cartSweepInterval is how often expired in-memory carts are dropped.
const cartSweepInterval = 10 * time.Minute

// dependencies are the external resources newApp wires together. Redis,
// Publisher, Images and Mailer are optional.
type dependencies struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher services.EventPublisher
	Images    repositories.ImageStore
	// Mailer overrides the EmailJS mailer built from cfg.
	Mailer services.Mailer
	// Clock overrides time.Now for the order limiter.
	Clock ratelimit.Clock
}

// newApp builds the Fiber app with every route and middleware. Background
// sweepers stop when ctx is done.
// fiberConfig makes c.IP() read X-Forwarded-For only when the proxy is trusted.
func fiberConfig(proxy config.ProxyConfig) fiber.Config {
	fc := fiber.Config{
		AppName:      "storefront",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if proxy.Trust {
		fc.ProxyHeader = fiber.HeaderXForwardedFor
		fc.EnableIPValidation = true
		if len(proxy.TrustedProxies) > 0 {
			fc.EnableTrustedProxyCheck = true
			fc.TrustedProxies = proxy.TrustedProxies
		}
	}
	return fc
}

func newApp(ctx context.Context, cfg config.Config, deps dependencies) (*fiber.App, error) {
	log := logger.Log
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	// --- Storage ---
	var cartStorage repositories.CartStorage
	var limiter ratelimit.Limiter
	limitCfg := ratelimit.Config{
		MaxAttempts:   cfg.RateLimit.MaxAttempts,
		Window:        cfg.RateLimit.Window,
		SweepOnCheck:  cfg.RateLimit.SweepOnCheck,
		SweepInterval: cfg.RateLimit.SweepInterval,
	}
	if deps.Redis != nil {
		cartStorage = repositories.NewRedisCartStorage(deps.Redis, cfg.CartTTL)
		redisLimiter, err := ratelimit.NewRedisLimiter(deps.Redis, limitCfg, clock)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		limiter = redisLimiter
	} else {
		memoryStorage := repositories.NewMemoryCartStorage(cfg.CartTTL, nil)
		memoryStorage.Start(ctx, cartSweepInterval)
		cartStorage = memoryStorage
		memoryLimiter, err := ratelimit.NewMemoryLimiter(limitCfg, clock)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		memoryLimiter.Start(ctx)
		limiter = memoryLimiter
	}
	limiter = ratelimit.NewGuarded(limiter, cfg.RateLimit.Timeout, cfg.RateLimit.FailOpen, logger.Named("ratelimit"))

	productRepo := repositories.NewGORMProductRepository(deps.DB)
	testimonialRepo := repositories.NewGORMTestimonialRepository(deps.DB)
	adminRepo := repositories.NewGORMAdminUserRepository(deps.DB)

	// --- Services ---
	emailCfg := services.EmailJSConfig(cfg.EmailJS)
	mailer := deps.Mailer
	if mailer == nil {
		mailer = services.NewEmailJSMailer(emailCfg, logger.Named("email"))
	}
	pricer := services.NewPricer(services.PricingConfig(cfg.Pricing))
	cartService := services.NewCartService(cartStorage, logger.Named("cart"))
	orderService := services.NewOrderService(limiter, mailer, pricer, deps.Publisher, logger.Named("orders"))
	productService := services.NewProductService(productRepo, deps.Images)
	testimonialService := services.NewTestimonialService(testimonialRepo, deps.Images)
	authService := services.NewAuthService(adminRepo, cfg.JWTSecret, logger.Named("auth"))

	// --- Handlers ---
	cartHandler := handlers.NewCartHandler(cartService, pricer)
	orderHandler := handlers.NewOrderHandler(orderService, cartService)
	contactHandler := handlers.NewContactHandler(mailer)
	productHandler := handlers.NewProductHandler(productService)
	testimonialHandler := handlers.NewTestimonialHandler(testimonialService)
	adminHandler := handlers.NewAdminHandler(productService, testimonialService, emailCfg)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New(fiberConfig(cfg.Proxy))

	// --- Middleware ---
	throttle := middleware.NewIPThrottle(cfg.APIRatePerMinute, cfg.APIRateBurst, 5*time.Minute)
	throttle.Start(ctx)

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{ContextKey: logger.RequestIDKey}))
	if cfg.AppEnv != "production" {
		app.Use(fiberlogger.New())
	}
	app.Use(middleware.RequestLogger(logger.Named("http")))
	app.Use(middleware.SecurityHeaders())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"redis":    deps.Redis != nil,
			"rabbitmq": deps.Publisher != nil,
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1",
		throttle.Handler(),
		middleware.CartSession(cfg.CartTTL, cfg.AppEnv == "production"),
	)

	authRequired := middleware.AuthRequired(authService)
	authHandler.RegisterRoutes(apiV1, middleware.BootstrapOrAuth(adminRepo, authService))
	productHandler.RegisterRoutes(apiV1)
	testimonialHandler.RegisterRoutes(apiV1)
	contactHandler.RegisterRoutes(apiV1)
	adminHandler.RegisterRoutes(apiV1, authRequired)
	cartHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)

	log.Info("routes registered",
		zap.Bool("redis", deps.Redis != nil),
		zap.Bool("image_uploads", deps.Images != nil),
	)
	return app, nil
}

// openDatabase connects with the configured driver and migrates the schema.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Testimonial{}, &models.AdminUser{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
