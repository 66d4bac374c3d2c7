// Package handler provides HTTP handlers for the Vigil API.
package handler

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"vigil/core/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter enforces a per-minute request budget per calling identity
// (client IP). Exceeding the budget is a distinct failure from
// authentication: 429, no state mutation.
type RateLimiter struct {
	perMinute int

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per identity.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		visitors:  make(map[string]*visitor),
	}
}

// Allow reports whether the identity has budget left for one request.
func (l *RateLimiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[identity]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)}
		l.visitors[identity] = v
	}
	v.lastSeen = time.Now()

	// Keep the table bounded: drop identities idle past their window.
	if len(l.visitors) > 10000 {
		cutoff := time.Now().Add(-3 * time.Minute)
		for id, vis := range l.visitors {
			if vis.lastSeen.Before(cutoff) {
				delete(l.visitors, id)
			}
		}
	}

	return v.limiter.Allow()
}

// Middleware rejects over-budget requests with 429 before the handler runs.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

// Keys under which the auth middleware stores request identity.
const (
	ctxUserID = "userID"
	ctxToken  = "accessToken"
)

// RequireAuth validates the bearer token and stores the subject user id and
// raw token on the context.
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization required",
			})
			return
		}

		userID, err := auth.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Could not validate credentials",
			})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxToken, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// SecurityHeaders sets the standard hardening headers on every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	}
}
