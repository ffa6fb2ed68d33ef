// Package response writes the JSON envelope shared by every endpoint:
//
//	{ "success": bool, "message": "...", "result": ..., "error": ... }
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/opsboard/internal/api/domain"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// FieldError is one entry of a validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func OK(c *gin.Context, result any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Result: result})
}

func Created(c *gin.Context, result any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Result: result})
}

// Message answers 200 with a message and no result
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

func Fail(c *gin.Context, status int, message string, detail any) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message, Error: detail})
}

// Error maps err onto a status code and writes the failure envelope.
// Unexpected errors are logged and their text is not exposed.
func Error(c *gin.Context, logger *slog.Logger, err error) {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		var detail any
		if vErr.Field != "" {
			detail = []FieldError{{Field: vErr.Field, Message: vErr.Message}}
		}
		Fail(c, http.StatusBadRequest, vErr.Error(), detail)
	case errors.Is(err, domain.ErrUnauthenticated):
		Fail(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		Fail(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		Fail(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		Fail(c, http.StatusConflict, err.Error(), nil)
	default:
		logger.Error("Request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		_ = c.Error(err)
		Fail(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
