package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(v Validator, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Middleware(v, "session_token", logger.NewNop())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID})
	})
	r.GET("/x", handlers...)
	return r
}

func TestMiddleware(t *testing.T) {
	ok := &fakeValidator{p: &Principal{UserID: "u-1", TenantID: "t-1", Role: domain.RoleMember}}

	tests := []struct {
		name      string
		validator Validator
		setup     func(r *http.Request)
		status    int
		message   string
	}{
		{
			name:      "bearer header",
			validator: ok,
			setup:     func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") },
			status:    http.StatusOK,
		},
		{
			name:      "session cookie",
			validator: ok,
			setup:     func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session_token", Value: "tok"}) },
			status:    http.StatusOK,
		},
		{
			name:      "no credentials",
			validator: ok,
			setup:     func(r *http.Request) {},
			status:    http.StatusUnauthorized,
			message:   "missing credentials",
		},
		{
			name:      "wrong scheme",
			validator: ok,
			setup:     func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			status:    http.StatusUnauthorized,
			message:   "missing credentials",
		},
		{
			name:      "rejected",
			validator: &fakeValidator{err: domain.ErrUnauthenticated},
			setup:     func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") },
			status:    http.StatusUnauthorized,
			message:   "invalid or expired token",
		},
		{
			name:      "upstream down",
			validator: &fakeValidator{err: errors.Join(ErrUnavailable, errors.New("dial"))},
			setup:     func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") },
			status:    http.StatusUnauthorized,
			message:   "authentication service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			newTestRouter(tt.validator).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.message, body["message"])
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role   string
		status int
	}{
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleManager, http.StatusOK},
		{domain.RoleMember, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			v := &fakeValidator{p: &Principal{UserID: "u", TenantID: "t", Role: tt.role}}
			r := newTestRouter(v, RequireRole(domain.RoleAdmin, domain.RoleManager))

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Authorization", "Bearer tok")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
