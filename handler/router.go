package handler

import (
	"time"

	"vigil/core/service"
	"vigil/utils/config"
	"vigil/utils/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the Gin engine with all middleware and routes wired.
func NewRouter(cfg *config.Config, monitorService *service.MonitorService, authService *service.AuthService) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Server.Mode != "release" {
		engine.Use(gin.Logger())
	}

	metrics := telemetry.New()
	engine.Use(metrics.Middleware())
	engine.Use(SecurityHeaders())

	// Add CORS middleware
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	monitorHandler := NewMonitorHandler(monitorService)
	authHandler := NewAuthHandler(authService)
	streamHandler := NewStreamHandler(monitorService, authService, cfg.Broadcast.Interval)

	registerLimit := NewRateLimiter(cfg.RateLimit.RegisterPerMinute)
	loginLimit := NewRateLimiter(cfg.RateLimit.LoginPerMinute)

	engine.GET("/", monitorHandler.Root)
	engine.GET("/health", monitorHandler.Health)
	engine.GET("/metrics", metrics.Handler())
	engine.GET("/ws", streamHandler.Stream)

	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", registerLimit.Middleware(), authHandler.Register)
		auth.POST("/login", loginLimit.Middleware(), authHandler.Login)
		auth.POST("/refresh", loginLimit.Middleware(), authHandler.Refresh)
		auth.POST("/logout", RequireAuth(authService), authHandler.Logout)
		auth.GET("/me", RequireAuth(authService), authHandler.Me)
	}

	api := engine.Group("/api", RequireAuth(authService))
	{
		api.GET("/metrics/current", monitorHandler.CurrentMetrics)
		api.GET("/metrics/history", monitorHandler.MetricsHistory)
		api.GET("/threat/score", monitorHandler.ThreatScore)
		api.GET("/threat/history", monitorHandler.ThreatHistory)
		api.GET("/events", monitorHandler.Events)
		api.GET("/stats", monitorHandler.Stats)
	}

	return engine
}
