// Package main is the entry point for the Vigil monitoring API server.
// It initializes the store, services, and HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vigil/core/models"
	"vigil/core/repository"
	"vigil/core/service"
	"vigil/handler"
	"vigil/utils/config"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Vigil monitoring API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open the store. An unreachable database is not fatal: the store
	// degrades to bounded in-memory history for the process lifetime.
	store := repository.Open(cfg.Database.Path)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()
	if store.Enabled() {
		log.Println("Durable store initialized successfully")
	} else {
		log.Println("Running in degraded mode: history limited to in-memory ring buffers")
	}

	// Create service instances
	sampler := service.NewSampler()
	threatService := service.NewThreatService(store.Users, store.Events,
		cfg.Auth.MaxFailedLogins, cfg.Auth.LockoutWindow)
	authService := service.NewAuthService(store.Users, threatService,
		cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	monitorService := service.NewMonitorService(store, sampler, threatService)

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
		log.Println("Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	}

	engine := handler.NewRouter(cfg, monitorService, authService)

	// Start retention pruning in background
	ctx, stopRetention := context.WithCancel(context.Background())
	defer stopRetention()
	pruner := service.NewRetentionPruner(store, cfg.LogRetention.Days, time.Hour)
	go pruner.Run(ctx)

	monitorService.RecordEvent("startup", "Vigil API started", models.SeverityInfo)

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Vigil API listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
