package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"spendtrack/internal/cache"
	"spendtrack/internal/config"
	"spendtrack/internal/database"
	"spendtrack/internal/events"
	"spendtrack/internal/handlers"
	"spendtrack/internal/logger"
	"spendtrack/internal/middleware"
	"spendtrack/internal/services"
	"spendtrack/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "spendtrack/internal/docs" // Import swagger docs
)

// @title           Spendtrack API
// @version         1.0
// @description     Spendtrack is a personal spending tracker: users record categorized spendings and get cached pie and bar chart statistics over daily, weekly, monthly, and yearly windows.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Create database manager and run migrations
	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Cache: Redis when configured, in-process otherwise.
	var store cache.Store
	if appConfig.RedisAddr != "" {
		store, err = cache.NewRedisStore(context.Background(), appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Infof("Using Redis cache at %s", appConfig.RedisAddr)
	} else {
		store = cache.NewMemoryStore()
		log.Info("REDIS_ADDR not set, using in-memory cache")
	}
	defer store.Close()

	// Event publisher: AMQP when configured, no-op otherwise.
	var publisher events.Publisher
	if appConfig.AMQPURL != "" {
		publisher, err = events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		log.Infof("Publishing spending events to exchange %q", appConfig.AMQPExchange)
	} else {
		publisher = events.NewNopPublisher()
		log.Info("AMQP_URL not set, spending events disabled")
	}
	defer publisher.Close()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	spendingService := services.NewSpendingService(db, store, publisher, appConfig.CacheTTL)
	statsService := services.NewStatsService(db, store, appConfig.CacheTTL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	spendingHandler := handlers.NewSpendingHandler(spendingService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes, rate limited per client IP
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(store, appConfig.RateLimit))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Category routes
	categories := protected.Group("/category")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Spending routes
	spendings := protected.Group("/spending")
	spendings.POST("", spendingHandler.CreateSpending)
	spendings.GET("", spendingHandler.ListSpendings)
	spendings.PUT("/:id", spendingHandler.UpdateSpending)
	spendings.DELETE("/:id", spendingHandler.DeleteSpending)
	spendings.GET("/stats/pie", statsHandler.GetPieStats)
	spendings.GET("/stats/bars", statsHandler.GetBarStats)

	log.Infof("Starting Spendtrack backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
