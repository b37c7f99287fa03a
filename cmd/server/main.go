package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/lego-inventory-backend/config"
	"github.com/ikkim/lego-inventory-backend/internal/app/controller"
	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/internal/app/repository"
	"github.com/ikkim/lego-inventory-backend/internal/app/service"
	"github.com/ikkim/lego-inventory-backend/internal/db"
	"github.com/ikkim/lego-inventory-backend/internal/router"
	"github.com/ikkim/lego-inventory-backend/internal/scheduler"
	"github.com/ikkim/lego-inventory-backend/internal/sequence"
	"github.com/ikkim/lego-inventory-backend/internal/storage"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	redisClient "github.com/ikkim/lego-inventory-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Server.LogLevel
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting Lego Inventory Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional unless it backs the set code sequence
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redisClient.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redisClient.Close(rdb); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	// Initialize repositories
	partRepo := repository.NewPartRepository(conn)
	setRepo := repository.NewLegoSetRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)

	images := storage.NewImageStore(&cfg.Images, &cfg.S3)
	codes := sequence.New(cfg.Sequence.Backend, conn, rdb, model.LegoSetSequence,
		sequence.SeedFromLatestCode(setRepo.LatestSetCode))
	logger.Info("Storage backends selected", map[string]interface{}{
		"images":   cfg.Images.Provider,
		"sequence": cfg.Sequence.Backend,
	})

	// Initialize services
	partService := service.NewPartService(partRepo, images, cfg.Images.RootFolder)
	setService := service.NewLegoSetService(setRepo, partRepo, partService, codes, images, cfg.Images.RootFolder)
	orderService := service.NewOrderService(orderRepo)

	// Setup router
	r := router.NewRouter(
		controller.NewPartController(partService),
		controller.NewLegoSetController(setService),
		controller.NewOrderController(orderService),
		cfg,
	)
	engine := r.Setup()

	if cfg.Scheduler.OrphanAuditEnabled {
		audit := scheduler.NewOrphanAuditScheduler(partService, cfg.Scheduler.OrphanAuditSpec)
		if err := audit.Start(); err != nil {
			logger.Fatal("Failed to start orphan part audit", err)
		}
		defer audit.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
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

	logger.Info("Shutting down server gracefully...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully", nil)
}
