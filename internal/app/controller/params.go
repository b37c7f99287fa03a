package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/lego-inventory-backend/internal/errors"
	"github.com/ikkim/lego-inventory-backend/internal/middleware"
)

// parseID reads the :id path parameter
func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID format", map[string]interface{}{
			"id":    idStr,
			"error": err.Error(),
		})
		return 0, apperrors.BadRequest(apperrors.ValidationInvalidID, "Invalid ID: "+idStr)
	}
	return uint(id), nil
}

// invalidBody reports an unreadable body as 400, or 413 when the body limit cut it short
func invalidBody(c *gin.Context, err error, message string) error {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"error": err.Error(),
	})
	if appErr, ok := apperrors.BodyTooLarge(err); ok {
		return appErr
	}
	return apperrors.BadRequest(apperrors.ValidationInvalidFormat, message)
}

// ImageRequest carries a base64 image or data URI
type ImageRequest struct {
	Image string `json:"image"`
}
