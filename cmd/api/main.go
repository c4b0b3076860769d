package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vintageai/vintageai-backend/internal/config"
	"github.com/vintageai/vintageai-backend/internal/handler"
	"github.com/vintageai/vintageai-backend/internal/middleware"
	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/internal/realtime"
	"github.com/vintageai/vintageai-backend/internal/repository"
	"github.com/vintageai/vintageai-backend/internal/service"
	"github.com/vintageai/vintageai-backend/pkg/aigateway"
	"github.com/vintageai/vintageai-backend/pkg/email"
	"github.com/vintageai/vintageai-backend/pkg/kie"
	"github.com/vintageai/vintageai-backend/pkg/logger"
	"github.com/vintageai/vintageai-backend/pkg/payment"
	"github.com/vintageai/vintageai-backend/pkg/runway"
	"github.com/vintageai/vintageai-backend/pkg/storage"
	"github.com/vintageai/vintageai-backend/pkg/utils"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	zapLogger, err := logger.New()
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer zapLogger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.CreditBalance{},
		&models.GenerationJob{},
		&models.Purchase{},
	); err != nil {
		zapLogger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Repositories
	balanceRepo := repository.NewCreditBalanceRepository(db)
	jobRepo := repository.NewGenerationJobRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	// Storage
	r2Storage, err := storage.NewCloudflareStorage(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize R2 storage", zap.Error(err))
	}

	// Provider clients
	kieClient := kie.NewClient(cfg.Kie.APIKey, cfg.Kie.BaseURL)
	gatewayClient := aigateway.NewClient(cfg.AIGateway.APIKey, cfg.AIGateway.BaseURL)
	runwayClient := runway.NewClient(cfg.Runway.APIKey, cfg.Runway.BaseURL, cfg.Runway.TaskBaseURL)
	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	emailService := email.NewEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, zapLogger)

	// Realtime hub
	hub := realtime.NewHub(zapLogger)

	// Services
	relocator := service.NewAssetRelocator(r2Storage, zapLogger)
	videoService := service.NewVideoService(jobRepo, balanceRepo, kieClient, relocator, r2Storage, hub, cfg.SweepBatchSize, zapLogger)
	imageService := service.NewImageService(balanceRepo, gatewayClient, zapLogger)
	promptService := service.NewPromptService(gatewayClient, zapLogger)
	runwayService := service.NewRunwayService(runwayClient, zapLogger)
	paymentService := service.NewPaymentService(stripeService, balanceRepo, purchaseRepo, emailService, cfg.PriceTable(), zapLogger)

	validator := utils.NewValidator()

	// Handlers
	videoHandler := handler.NewVideoHandler(videoService, promptService, validator, cfg.CronSecret)
	imageHandler := handler.NewImageHandler(imageService)
	runwayHandler := handler.NewRunwayHandler(runwayService, validator)
	paymentHandler := handler.NewPaymentHandler(paymentService, validator, cfg.Stripe.WebhookSecret, zapLogger)
	realtimeHandler := handler.NewRealtimeHandler(hub, cfg.JWTSecret, zapLogger)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberLogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	// Public routes
	api.Post("/payments/checkout", middleware.OptionalAuth(cfg.JWTSecret), paymentHandler.CreatePayment)
	api.Post("/payments/verify", paymentHandler.VerifyPayment)
	api.Post("/payments/webhook", paymentHandler.HandleStripeWebhook)

	// Sweep trigger for the external scheduler (cron secret, not user auth)
	api.Post("/videos/poll", videoHandler.PollVideoStatus)

	// Realtime job updates
	app.Use("/ws", realtimeHandler.Upgrade)
	app.Get("/ws/videos", realtimeHandler.Serve())

	// Protected routes
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		videos := api.Group("/videos")
		videos.Post("/generate", videoHandler.GenerateVideo)
		videos.Post("/status", videoHandler.CheckStatus)
		videos.Post("/enhance-prompt", videoHandler.EnhancePrompt)
		videos.Post("/runway/generate", runwayHandler.GenerateVideo)
		videos.Post("/runway/status", runwayHandler.TaskStatus)

		images := api.Group("/images")
		images.Post("/generate", imageHandler.GenerateImage)

		payments := api.Group("/payments")
		payments.Get("/history", paymentHandler.GetPurchaseHistory)
	}

	// In-process sweep ticker; deployments with an external cron leave
	// SWEEP_INTERVAL unset and hit /api/videos/poll instead.
	if cfg.SweepInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SweepInterval)
			defer ticker.Stop()
			for range ticker.C {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.SweepInterval)
				if _, err := videoService.PollPendingJobs(ctx); err != nil {
					zapLogger.Error("background sweep failed", zap.Error(err))
				}
				cancel()
			}
		}()
	}

	zapLogger.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
