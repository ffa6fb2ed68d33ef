package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/response"
)

const principalKey = "auth.principal"

// Middleware authenticates every request with a bearer token or the session cookie
func Middleware(v Validator, cookieName string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, cookieName)
		if token == "" {
			response.Fail(c, http.StatusUnauthorized, "missing credentials", nil)
			return
		}

		p, err := v.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				logger.Error("Token validation failed",
					slog.String("path", c.Request.URL.Path),
					slog.Any("error", err),
				)
				response.Fail(c, http.StatusUnauthorized, ErrUnavailable.Error(), nil)
				return
			}
			response.Fail(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// PrincipalFrom returns the principal stored by Middleware
func PrincipalFrom(c *gin.Context) *Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}

// WithPrincipal stores p on the context. Used by tests and internal callers.
func WithPrincipal(c *gin.Context, p *Principal) {
	c.Set(principalKey, p)
}

// RequireRole rejects principals whose role is not listed
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			response.Fail(c, http.StatusUnauthorized, domain.ErrUnauthenticated.Error(), nil)
			return
		}
		if !slices.Contains(roles, p.Role) {
			response.Fail(c, http.StatusForbidden, "insufficient role", nil)
			return
		}
		c.Next()
	}
}
