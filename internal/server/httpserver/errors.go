package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to responses. Unexpected errors are logged
// and answered with a bare 500 so no detail leaks to the client.
func (s *Server) writeError(c *gin.Context, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": string(ve.Kind), "message": ve.Error()})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": err.Error()})
	case errors.Is(err, common.ErrUnauthenticated):
		c.Redirect(http.StatusSeeOther, "/login")
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, services.ErrExportDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
	c.Abort()
}
