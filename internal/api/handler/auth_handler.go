package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/opsboard/internal/api/response"
)

// ValidateToken handles GET /v1/auth/validate-token. The auth middleware has
// already validated the token, so this echoes the principal back.
func ValidateToken(c *gin.Context) {
	response.OK(c, principal(c))
}
