package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/api"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/database"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/providers/openai"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository/postgres"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/services"
)

const insightInterval = 6 * time.Hour

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	provider, err := openai.NewProvider(cfg.OpenAI)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize generation provider")
	}

	cache := services.NewCacheService(cfg.Redis, logger)
	defer cache.Close()

	repos := services.Repositories{
		Conversations: postgres.NewConversationRepository(db.DB),
		Messages:      postgres.NewMessageRepository(db.DB),
		Summaries:     postgres.NewSummaryRepository(db.DB),
		Knowledge:     postgres.NewKnowledgeRepository(db.DB),
		Clients:       postgres.NewClientRepository(db.DB),
		Insights:      postgres.NewInsightRepository(db.DB),
		Analytics:     postgres.NewAnalyticsRepository(db.DB),
	}

	svc := services.NewServices(repos, provider, cache, cfg.Chat, logger)
	defer svc.Queue.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go svc.Insights.RunPeriodically(ctx, insightInterval)

	app := fiber.New(fiber.Config{
		AppName:      "Tapverse Content Backend",
		ReadTimeout:  30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	jwtSecret := os.Getenv("TAPVERSE_JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production"
		logger.Warn("using default JWT secret, set TAPVERSE_JWT_SECRET in production")
	}

	api.SetupRoutes(app, svc, jwtSecret)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.WithField("addr", addr).Info("server starting")
		if err := app.Listen(addr); err != nil {
			logger.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func getOrigins() string {
	origins := os.Getenv("TAPVERSE_CORS_ORIGINS")
	if origins == "" {
		return "http://localhost:5173,http://localhost:3000"
	}
	return origins
}
