package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
)

// ErrorHandler renders the last error a handler attached with c.Error as the
// {success:false, message} envelope. Handlers that already wrote a body are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperrors.ParseError(c.Errors.Last().Err, c.FullPath())
		log := GetLoggerFromContext(c)
		if appErr.Status >= http.StatusInternalServerError {
			log.Error("Request failed", appErr.Err, map[string]interface{}{
				"status_code": appErr.Status,
				"code":        appErr.Code,
			})
		} else {
			log.Warn("Request rejected", map[string]interface{}{
				"status_code": appErr.Status,
				"code":        appErr.Code,
				"message":     appErr.Message,
			})
		}

		apperrors.RespondWithError(c, appErr)
	}
}

// NotFoundHandler answers unmatched routes
func NotFoundHandler(c *gin.Context) {
	_ = c.Error(apperrors.NotFound(apperrors.RouteNotFound, fmt.Sprintf("Not Found - %s", c.Request.URL.RequestURI())))
}

// Recovery converts panics into a 500 envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err := fmt.Errorf("panic: %v", recovered)
		GetLoggerFromContext(c).Error("Recovered from panic", err, map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.RespondWithError(c, apperrors.Internal(err))
	})
}

// BodyLimit caps request bodies at maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
