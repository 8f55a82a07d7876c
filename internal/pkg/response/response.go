package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marineworks/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// FromError maps the domain error taxonomy onto HTTP responses. Guard
// failures carry the full message so the client can show an actionable
// prompt instead of a raw error.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrNoOp):
		Error(c, http.StatusConflict, "NO_OP", err.Error())
	case errors.Is(err, domain.ErrGuardFailed):
		Error(c, http.StatusUnprocessableEntity, "GUARD_FAILED", err.Error())
	case errors.Is(err, domain.ErrPartialFailure):
		Error(c, http.StatusInternalServerError, "PARTIAL_FAILURE", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
