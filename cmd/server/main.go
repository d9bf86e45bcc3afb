package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"renthub/internal/database"
	"renthub/internal/router"
	"renthub/internal/services"
	"renthub/pkg/config"
	"renthub/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// initialize logging
	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger := logger.GetLogger()
	appLogger.Info("Starting RentHub API...")

	// initialize database
	if err := database.Initialize(cfg); err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			appLogger.Error("Failed to close database:", err)
		}
		if err := database.CloseRedisQueue(); err != nil {
			appLogger.Error("Failed to close Redis:", err)
		}
	}()

	// run migrations
	if err := database.Migrate(); err != nil {
		appLogger.Fatalf("Failed to migrate database: %v", err)
	}

	// set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// start the lease scheduler before the router so recovery runs
	// even if no request ever comes in
	notificationService := services.NewNotificationService(database.GetDB(), database.GetRedisQueue())
	requestService := services.NewPropertyRequestService(database.GetDB(), notificationService)
	paymentService := services.NewPaymentService(database.GetDB(), notificationService)
	leaseScheduler := services.NewLeaseScheduler(database.GetDB(), requestService, paymentService)
	if err := leaseScheduler.Start(); err != nil {
		appLogger.Errorf("Failed to start lease scheduler: %v", err)
		// the API still works without it
	}
	defer leaseScheduler.Stop()

	// set up routes
	r := router.SetupRouter()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	appLogger.Infof("Server started on port %s", cfg.Server.Port)

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	if err := server.Close(); err != nil {
		appLogger.Error("Server forced to shutdown:", err)
	}
	appLogger.Info("Server exited")
}
