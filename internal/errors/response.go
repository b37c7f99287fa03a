package errors

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform failure envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"` // stable code for the dashboard
}

// RespondWithError writes the envelope for err and aborts the chain
func RespondWithError(c *gin.Context, err *AppError) {
	c.AbortWithStatusJSON(err.Status, ErrorResponse{
		Success: false,
		Message: err.Message,
		Code:    err.Code,
	})
}
