package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/roster-optimizer/internal/api/handlers"
	"github.com/stitts-dev/roster-optimizer/internal/storage"
	"github.com/stitts-dev/roster-optimizer/internal/websocket"
	"github.com/stitts-dev/roster-optimizer/pkg/cache"
	"github.com/stitts-dev/roster-optimizer/pkg/config"
	"github.com/stitts-dev/roster-optimizer/pkg/database"
	"github.com/stitts-dev/roster-optimizer/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	logger.WithService(cfg.ServiceName).WithFields(logrus.Fields{
		"version":     "1.0.0",
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting Roster Optimizer")

	// Setup Gin mode
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database and run migrations
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.WithService(cfg.ServiceName).Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := storage.NewStore(db, structuredLogger)
	if err := store.AutoMigrate(); err != nil {
		logger.WithService(cfg.ServiceName).Fatalf("Failed to run migrations: %v", err)
	}

	// Connect to Redis for result caching
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService(cfg.ServiceName).Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.WithService(cfg.ServiceName).Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	cacheService := cache.NewOptimizationCacheService(redisClient, structuredLogger)

	// WebSocket hub for progress updates
	wsHub := websocket.NewHub(structuredLogger)
	go wsHub.Run()

	// Initialize router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(corsMiddleware(cfg.CorsOrigins))

	// Initialize handlers
	optimizationHandler := handlers.NewOptimizationHandler(
		store,
		cacheService,
		wsHub,
		cfg,
		structuredLogger,
	)
	valuationHandler := handlers.NewValuationHandler(structuredLogger)
	poolHandler := handlers.NewPoolHandler(store, cacheService, structuredLogger)
	runHandler := handlers.NewRunHandler(store, structuredLogger)
	healthHandler := handlers.NewHealthHandler(db, redisClient, structuredLogger)

	// Setup API routes
	apiV1 := router.Group("/api/v1")
	{
		// Optimization endpoints
		apiV1.POST("/optimize", optimizationHandler.OptimizeRoster)
		apiV1.POST("/optimize/validate", optimizationHandler.ValidateOptimizationRequest)
		apiV1.GET("/optimize/cache-status", optimizationHandler.GetCacheStatus)

		// Valuation endpoints
		apiV1.POST("/valuation/players", valuationHandler.ValuePlayers)
		apiV1.POST("/valuation/portfolio", valuationHandler.AnalyzePortfolio)

		// Player pool endpoints
		apiV1.POST("/pools", poolHandler.CreatePool)
		apiV1.GET("/pools", poolHandler.ListPools)
		apiV1.GET("/pools/:id", poolHandler.GetPool)

		// Run history endpoints
		apiV1.GET("/runs", runHandler.ListRuns)
		apiV1.GET("/runs/:id", runHandler.GetRun)
	}

	// WebSocket endpoint for progress updates
	router.GET("/ws/optimization-progress/:user_id", wsHub.HandleWebSocket)

	// Health check endpoints
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", healthHandler.GetMetrics)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.WithService(cfg.ServiceName).WithField("port", cfg.Port).Info("Roster optimizer started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService(cfg.ServiceName).Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService(cfg.ServiceName).Info("Shutting down roster optimizer...")

	// The server has 5 seconds to finish the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService(cfg.ServiceName).Fatalf("Roster optimizer forced to shutdown: %v", err)
	}

	logger.WithService(cfg.ServiceName).Info("Roster optimizer exited")
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowed[strings.TrimSpace(origin)] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] || allowed["*"] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
