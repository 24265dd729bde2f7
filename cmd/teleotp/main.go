package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teleotp/teleotp/internal/config"
	"github.com/teleotp/teleotp/internal/handlers"
	"github.com/teleotp/teleotp/internal/repository"
	"github.com/teleotp/teleotp/internal/service"
	"github.com/teleotp/teleotp/pkg/cache"
	"github.com/teleotp/teleotp/pkg/messaging"
	"github.com/teleotp/teleotp/pkg/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initialize MongoDB
	ctx := context.Background()
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(ctx)

	database := mongoClient.Database(cfg.MongoDatabase)

	// Initialize Redis
	redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Initialize RabbitMQ
	mq, err := messaging.NewRabbitMQ(cfg.RabbitMQURI)
	if err != nil {
		logger.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mq.Close()

	if err := setupMessagingTopology(mq); err != nil {
		logger.Fatalf("Failed to setup RabbitMQ topology: %v", err)
	}

	// Initialize repositories
	serviceRepo := repository.NewServiceRepository(database, logger)
	numberRepo := repository.NewNumberRepository(database, logger)
	orderRepo := repository.NewOrderRepository(database, logger)
	userRepo := repository.NewUserRepository(database, logger)

	if err := numberRepo.CreateIndexes(ctx); err != nil {
		logger.Warnf("Failed to create phone_numbers indexes: %v", err)
	}
	if err := orderRepo.CreateIndexes(ctx); err != nil {
		logger.Warnf("Failed to create orders indexes: %v", err)
	}
	if err := userRepo.CreateIndexes(ctx); err != nil {
		logger.Warnf("Failed to create users indexes: %v", err)
	}

	// Initialize services
	var notifier service.Notifier = service.NopNotifier{}
	if cfg.TelegramToken != "" {
		tg, err := service.NewTelegramNotifier(cfg.TelegramToken, cfg.AdminChatID, logger)
		if err != nil {
			logger.Warnf("Telegram notifier disabled: %v", err)
		} else {
			notifier = tg
		}
	}

	metricsCollector := service.NewMetricsCollector()
	listingCache := service.NewCacheService(redisCache, logger)
	eventBus := service.NewRedisEventBus(redisCache, mq, logger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, authMiddleware, cfg.AdminEmails, logger)

	marketService := service.NewMarketService(
		serviceRepo,
		numberRepo,
		orderRepo,
		listingCache,
		eventBus,
		notifier,
		metricsCollector,
		logger,
	)
	inventoryService := service.NewInventoryService(
		serviceRepo,
		numberRepo,
		orderRepo,
		listingCache,
		logger,
	)
	otpService := service.NewOTPService(
		orderRepo,
		numberRepo,
		eventBus,
		notifier,
		metricsCollector,
		logger,
	)

	// Initialize handlers
	httpHandler := handlers.NewHTTPHandler(authService, marketService, inventoryService, otpService, logger)
	webhookHandler := handlers.NewWebhookHandler(otpService, cfg.WebhookSecret, metricsCollector, logger)
	streamHandler := handlers.NewStreamHandler(eventBus, logger)

	// Start HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	router.GET("/health", httpHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/webhooks/otp", webhookHandler.ReceiveOTP)

	auth := router.Group("/auth")
	{
		auth.POST("/register", httpHandler.Register)
		auth.POST("/login", httpHandler.Login)
	}

	api := router.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	{
		api.GET("/services", httpHandler.ListServices)
		api.POST("/purchase", httpHandler.Purchase)
		api.GET("/orders", httpHandler.ListOrders)
		api.GET("/orders/stream", streamHandler.StreamOrders)
	}

	admin := api.Group("/admin")
	admin.Use(authMiddleware.RequireRole("admin"))
	{
		admin.POST("/services", httpHandler.AdminAddService)
		admin.GET("/services", httpHandler.AdminListServices)
		admin.POST("/services/:id/numbers", httpHandler.AdminAddNumbers)
		admin.DELETE("/numbers/:id", httpHandler.AdminDeleteNumber)
		admin.GET("/orders", httpHandler.AdminListOrders)
		admin.POST("/orders/:order_id/otp", httpHandler.AdminSendOTP)
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting HTTP server on port %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func setupMessagingTopology(mq *messaging.RabbitMQ) error {
	if err := mq.DeclareExchange("orders.events", "topic", true, false); err != nil {
		return fmt.Errorf("failed to declare orders.events exchange: %w", err)
	}

	if _, err := mq.DeclareQueue("orders.audit", true, false, false); err != nil {
		return fmt.Errorf("failed to declare orders.audit queue: %w", err)
	}

	if err := mq.BindQueue("orders.audit", "order.*", "orders.events"); err != nil {
		return fmt.Errorf("failed to bind orders.audit queue: %w", err)
	}

	return nil
}
