// Package main is the entry point for the Vigil self-healing watchdog.
// It runs independently of the API process so a crash in one cannot take
// down the other.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vigil/core/repository"
	"vigil/utils/config"
	"vigil/utils/supervisor"
	"vigil/watchdog"
)

func main() {
	log.Println("Starting Vigil watchdog...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The watchdog records its actions through the same store contract the
	// API uses; degraded mode applies here too.
	store := repository.Open(cfg.Database.Path)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()

	// Initialize supervisor client
	sup, err := supervisor.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize supervisor client: %v", err)
	}
	defer sup.Close()

	// Test supervisor connection
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sup.Ping(pingCtx); err != nil {
		log.Fatalf("Failed to connect to Docker daemon: %v", err)
	}
	log.Println("Supervisor client initialized successfully")

	wd := watchdog.New(watchdog.Options{
		HealthURL:        cfg.Watchdog.APIURL + "/health",
		Service:          cfg.Watchdog.Service,
		FailureThreshold: cfg.Watchdog.FailureThreshold,
		CheckTimeout:     cfg.Watchdog.CheckTimeout,
		Cooldown:         cfg.Watchdog.Cooldown,
	}, sup, store.Events)

	ctx, stop := context.WithCancel(context.Background())
	go wd.Run(ctx, cfg.Watchdog.Interval)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down watchdog...")
	stop()
	log.Println("Watchdog stopped gracefully")
}
