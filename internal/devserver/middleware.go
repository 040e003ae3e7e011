package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"suju/storefront/internal/models"
	"suju/storefront/internal/security"
)

const requestIDHeader = "X-Request-Id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("request_id", c.Writer.Header().Get(requestIDHeader)).
			Msg("http request")
	}
}

func recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("request_id", c.Writer.Header().Get(requestIDHeader)).
					Msg("panic recovered")
				failStatus(c, http.StatusInternalServerError, "internal server error")
			}
		}()
		c.Next()
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// auth validates the bearer token and loads the current user. Invalid
// or missing tokens get HTTP 401, which the client treats as session
// death.
func auth(secret string, store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			failStatus(c, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := security.ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			failStatus(c, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := store.User(claims.UserID)
		if err != nil {
			failStatus(c, http.StatusUnauthorized, "user not found")
			return
		}

		c.Set("current_user", user)
		c.Next()
	}
}

// requireAdmin gets HTTP 403: a permission failure on the resource, not
// an invalid session, so the client must not clear credentials.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin {
			failStatus(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) models.User {
	user, _ := c.Get("current_user")
	u, _ := user.(models.User)
	return u
}
