package api

import (
	"net/http"
	"sync"
	"time"

	"pharmacy-storefront/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	userKey  = "user"
	staffKey = "staff"
)

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if u := currentUser(c); u != nil {
			fields = append(fields, zap.Int64("user_id", u.ID))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Info("Request rejected", fields...)
		default:
			logger.Debug("Request handled", fields...)
		}
	}
}

func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// authenticate resolves the session cookie. Requests without a valid
// session continue anonymously.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(h.cfg.Security.SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := h.svc.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.clearSessionCookie(c)
			c.Next()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func (h *Handler) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Please log in to continue.",
				"redirect": h.path("/auth/login") + "?next=" + c.Request.URL.Path,
			})
			return
		}
		c.Next()
	}
}

// requireStaff stores the back-office capability for the handlers below it
func (h *Handler) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, err := service.RequireStaff(actor(c))
		if err != nil {
			h.respondError(c, err, h.path("/home"))
			return
		}
		c.Set(staffKey, staff)
		c.Next()
	}
}

// rateLimiter allows limit requests per window for each client IP
func rateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		mu.Lock()
		limiter, exists := limiters[clientIP]
		if !exists {
			limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
			limiters[clientIP] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many attempts. Please try again later.",
				"retry_after": window.String(),
			})
			return
		}
		c.Next()
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.SessionCookie, token, int(h.cfg.Redis.SessionTTL.Seconds()), "/", "", h.cfg.Security.SecureCookies, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.SessionCookie, "", -1, "/", "", h.cfg.Security.SecureCookies, true)
}
