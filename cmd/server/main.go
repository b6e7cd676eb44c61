package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banglehouse/bangles-backend/config"
	"github.com/banglehouse/bangles-backend/internal/app/controller"
	"github.com/banglehouse/bangles-backend/internal/app/repository"
	"github.com/banglehouse/bangles-backend/internal/app/service"
	"github.com/banglehouse/bangles-backend/internal/db"
	"github.com/banglehouse/bangles-backend/internal/router"
	"github.com/banglehouse/bangles-backend/internal/scheduler"
	"github.com/banglehouse/bangles-backend/internal/storage"
	ws "github.com/banglehouse/bangles-backend/internal/websocket"
	"github.com/banglehouse/bangles-backend/pkg/logger"
	redisClient "github.com/banglehouse/bangles-backend/pkg/redis"
	"github.com/banglehouse/bangles-backend/pkg/translate"
)

const (
	redisKeyPrefix  = "bangles:"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting Bangles Backend Server", map[string]interface{}{
		"environment":     cfg.Server.Environment,
		"port":            cfg.Server.Port,
		"log_level":       logLevel,
		"storage_backend": cfg.Cart.StorageBackend,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if cfg.Server.Environment == "development" {
		if err := db.Seed(); err != nil {
			logger.Warn("Failed to seed database", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	kv := newKeyValueStore(cfg)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Realtime hub; the cart service notifies it and it reads carts back on sync
	hub := ws.NewHub(nil)

	// Initialize repositories
	bangleRepo := repository.NewBangleRepository(db.GetDB())

	// Initialize services
	bangleService := service.NewBangleService(bangleRepo)
	cartService := service.NewCartService(kv, hub)
	hub.SetCartSource(cartService)
	wishlistService := service.NewWishlistService(kv)

	translator, err := translate.NewClient(translate.Config{
		BaseURL: cfg.Translation.BaseURL,
		APIKey:  cfg.Translation.APIKey,
		Timeout: cfg.Translation.Timeout,
	}, kv)
	if err != nil {
		logger.Fatal("Failed to create translation client", err)
	}
	translationService := service.NewTranslationService(translator)

	s3Storage := storage.NewS3Storage(
		ctx,
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	go hub.Run(ctx)

	evictionScheduler := scheduler.NewSessionEvictionScheduler(
		cfg.Cart.EvictionSchedule,
		cfg.Cart.SessionIdleTTL,
		map[string]scheduler.IdleEvicter{
			"cart":     cartService,
			"wishlist": wishlistService,
		},
	)
	if err := evictionScheduler.Start(); err != nil {
		logger.Fatal("Failed to start session eviction scheduler", err)
	}
	defer evictionScheduler.Stop()

	// Initialize controllers
	bangleController := controller.NewBangleController(bangleService)
	cartController := controller.NewCartController(cartService, bangleService)
	wishlistController := controller.NewWishlistController(wishlistService, bangleService)
	translationController := controller.NewTranslationController(translationService)
	uploadController := controller.NewUploadController(s3Storage)
	realtimeController := controller.NewRealtimeController(hub, cfg.CORS.AllowedOrigins)

	// Setup router
	r := router.NewRouter(
		bangleController,
		cartController,
		wishlistController,
		translationController,
		uploadController,
		realtimeController,
		cfg,
	)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	cancel()

	logger.Info("Server stopped successfully")
}

// newKeyValueStore picks the snapshot backend for carts, wishlists and
// cached translations.
func newKeyValueStore(cfg *config.Config) storage.KeyValueStore {
	switch cfg.Cart.StorageBackend {
	case config.StorageBackendRedis:
		if err := redisClient.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		return storage.NewRedisStore(redisClient.GetClient(), redisKeyPrefix)
	case config.StorageBackendDatabase:
		return storage.NewDatabaseStore(db.GetDB())
	default:
		return storage.NewMemoryStore()
	}
}
