package httpserver

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// identityFrom returns the identity resolved for this request.
func identityFrom(c *gin.Context) models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(models.Identity); ok {
			return id
		}
	}
	return models.Anonymous()
}

// resolveIdentity attaches the session identity to every request. A
// missing or invalid cookie yields Anonymous.
func (s *Server) resolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := models.Anonymous()
		if token, err := c.Cookie(common.SessionCookieName); err == nil && token != "" {
			id = s.sessions.Resolve(c.Request.Context(), token)
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// requireSession sends anonymous requests to the login page.
func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).IsAuthenticated() {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if id := identityFrom(c); id.IsAuthenticated() {
			args = append(args, "user_id", id.UserID())
		}
		s.logger.Info(c.Request.Context(), "http request", args...)
	}
}

// recovery turns a handler panic into the generic 500 body.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		s.logger.Error(c.Request.Context(), "panic in handler", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}
