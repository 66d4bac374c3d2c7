package handler

import (
	"log"
	"net/http"
	"time"

	"vigil/core/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// writeWait bounds each snapshot push so a client that stops draining its
// buffer fails the write instead of parking the send loop.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin policy is enforced by the CORS layer in front; the
		// stream itself is gated by the token check below.
		return true
	},
}

// StreamHandler pushes periodic metric snapshots over a persistent
// connection. Each connection runs its own send loop; a slow or dead client
// terminates only its own loop.
type StreamHandler struct {
	monitorService *service.MonitorService
	authService    *service.AuthService
	interval       time.Duration
}

// NewStreamHandler creates a new live-update stream handler.
func NewStreamHandler(monitorService *service.MonitorService, authService *service.AuthService, interval time.Duration) *StreamHandler {
	return &StreamHandler{
		monitorService: monitorService,
		authService:    authService,
		interval:       interval,
	}
}

// Stream handles GET /ws?token=...
func (h *StreamHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}
	if _, err := h.authService.Verify(token); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("Live update stream connected: %s", c.ClientIP())

	// Drain inbound frames so close frames are processed; any read error
	// ends the connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	// First snapshot immediately, then one per tick. Each push is
	// independent; no acknowledgement is expected.
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(h.monitorService.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			log.Printf("Live update stream closed: %s", c.ClientIP())
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(h.monitorService.Snapshot()); err != nil {
				log.Printf("Live update push failed, dropping client %s: %v", c.ClientIP(), err)
				return
			}
		}
	}
}
