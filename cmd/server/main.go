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
	"go.uber.org/zap"

	"github.com/JackobTheLion/share-it/internal/application"
	"github.com/JackobTheLion/share-it/internal/common/database"
	"github.com/JackobTheLion/share-it/internal/common/health"
	"github.com/JackobTheLion/share-it/internal/common/kafka"
	"github.com/JackobTheLion/share-it/internal/common/logger"
	"github.com/JackobTheLion/share-it/internal/common/metrics"
	"github.com/JackobTheLion/share-it/internal/common/middleware"
	"github.com/JackobTheLion/share-it/internal/config"
	bookingDomain "github.com/JackobTheLion/share-it/internal/domain/booking"
	"github.com/JackobTheLion/share-it/internal/handler"
	"github.com/JackobTheLion/share-it/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "share-it")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting share-it",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.ItemModel{},
			&repository.RequestModel{},
			&repository.BookingModel{},
			&repository.CommentModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	requestRepo := repository.NewGormRequestRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)

	clock := bookingDomain.SystemClock{}

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		itemRepo,
		userRepo,
		clock,
		kafkaProducer,
		log,
	)
	itemService := application.NewItemService(
		itemRepo,
		commentRepo,
		userRepo,
		bookingRepo,
		clock,
		log,
	)
	userService := application.NewUserService(userRepo, log)
	requestService := application.NewRequestService(requestRepo, itemRepo, userRepo, log)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	itemHandler := handler.NewItemHandler(itemService)
	userHandler := handler.NewUserHandler(userService)
	requestHandler := handler.NewRequestHandler(requestService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit))

	// Register health check and metrics routes
	metrics.Register()
	healthHandler := health.NewHandler(db, "share-it")
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", metrics.Handler())

	// User management is open; everything else requires the gateway
	// identity header.
	api := router.Group("")
	api.Use(metrics.Middleware())
	userHandler.RegisterRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.ActorMiddleware())
	bookingHandler.RegisterRoutes(authed)
	itemHandler.RegisterRoutes(authed)
	requestHandler.RegisterRoutes(authed)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down share-it...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("share-it stopped")
}
