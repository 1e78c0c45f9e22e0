package api

import (
	"context"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (int64, error)
}

// RequireSession resolves the session cookie to a user id or aborts with 401.
func RequireSession(sessions SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			respondError(c, domain.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, err := sessions.Resolve(c.Request.Context(), sid)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// RequestLogger writes one line per request and logs errors handlers attached.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	log = log.Action("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		for _, e := range c.Errors {
			log.Error("request failed", e.Err, args...)
		}
		log.Info("request", args...)
	}
}
