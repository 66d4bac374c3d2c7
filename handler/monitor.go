package handler

import (
	"net/http"
	"strconv"
	"time"

	"vigil/core/service"

	"github.com/gin-gonic/gin"
)

// MonitorHandler handles metrics, threat, event, and stats requests.
type MonitorHandler struct {
	monitorService *service.MonitorService
}

// NewMonitorHandler creates a new monitor handler.
func NewMonitorHandler(monitorService *service.MonitorService) *MonitorHandler {
	return &MonitorHandler{monitorService: monitorService}
}

// Health handles GET /health. This is the surface the watchdog polls; it
// must stay cheap and must not touch the store.
func (h *MonitorHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// Root handles GET /
func (h *MonitorHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":     "Vigil",
		"version": "1.0.0",
		"status":  "running",
	})
}

// CurrentMetrics handles GET /api/metrics/current
// Side effect: one MetricSample is persisted per call.
func (h *MonitorHandler) CurrentMetrics(c *gin.Context) {
	sample := h.monitorService.CurrentMetrics()
	c.JSON(http.StatusOK, gin.H{
		"status":         sample.Status,
		"cpu_percent":    sample.CPUPercent,
		"memory_percent": sample.MemoryPercent,
		"disk_percent":   sample.DiskPercent,
		"timestamp":      sample.Timestamp,
	})
}

// MetricsHistory handles GET /api/metrics/history?limit=N
func (h *MonitorHandler) MetricsHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitorService.MetricsHistory(limitParam(c, 100)))
}

// ThreatScore handles GET /api/threat/score
// Side effect: one ThreatScore is persisted per call.
func (h *MonitorHandler) ThreatScore(c *gin.Context) {
	score := h.monitorService.CurrentThreatScore()
	c.JSON(http.StatusOK, gin.H{
		"threat_score": score.Score,
		"level":        score.Level,
		"timestamp":    score.Timestamp,
	})
}

// ThreatHistory handles GET /api/threat/history?limit=N
func (h *MonitorHandler) ThreatHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitorService.ThreatHistory(limitParam(c, 100)))
}

// Events handles GET /api/events?limit=N&event_type=
func (h *MonitorHandler) Events(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitorService.Events(c.Query("event_type"), limitParam(c, 50)))
}

// Stats handles GET /api/stats
func (h *MonitorHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitorService.Stats())
}

func limitParam(c *gin.Context, defaultLimit int) int {
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			return limit
		}
	}
	return defaultLimit
}
