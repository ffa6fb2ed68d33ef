package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/opsboard/internal/api/domain"
)

func TestRemoteValidator_Validate(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      any
		wantErr   error
		wantRole  string
		checkAuth bool
	}{
		{
			name:   "valid token",
			status: http.StatusOK,
			body: map[string]any{
				"success": true,
				"result": map[string]any{
					"user_id": "u-1", "tenant_id": "t-1", "email": "a@b.c", "role": "admin",
				},
			},
			wantRole:  "admin",
			checkAuth: true,
		},
		{
			name:   "missing role defaults to member",
			status: http.StatusOK,
			body: map[string]any{
				"success": true,
				"result":  map[string]any{"user_id": "u-1", "tenant_id": "t-1"},
			},
			wantRole: domain.RoleMember,
		},
		{
			name:    "rejected token",
			status:  http.StatusUnauthorized,
			body:    map[string]any{"success": false},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name:    "success false",
			status:  http.StatusOK,
			body:    map[string]any{"success": false, "message": "expired"},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name:    "no tenant",
			status:  http.StatusOK,
			body:    map[string]any{"success": true, "result": map[string]any{"user_id": "u-1"}},
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name:    "upstream error",
			status:  http.StatusBadGateway,
			body:    map[string]any{},
			wantErr: ErrUnavailable,
		},
		{
			name:    "garbage body",
			status:  http.StatusOK,
			body:    "not json {",
			wantErr: ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.checkAuth {
					assert.Equal(t, http.MethodGet, r.Method)
					assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				}
				w.WriteHeader(tt.status)
				if s, ok := tt.body.(string); ok {
					_, _ = w.Write([]byte(s))
					return
				}
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			v := NewRemoteValidator(srv.URL, time.Second)
			p, err := v.Validate(context.Background(), "tok")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u-1", p.UserID)
			assert.Equal(t, "t-1", p.TenantID)
			assert.Equal(t, tt.wantRole, p.Role)
		})
	}
}

func TestRemoteValidator_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemoteValidator(url, 200*time.Millisecond).Validate(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}

type fakeValidator struct {
	calls int
	p     *Principal
	err   error
}

func (f *fakeValidator) Validate(_ context.Context, _ string) (*Principal, error) {
	f.calls++
	return f.p, f.err
}

type memCache struct {
	items  map[string]*Principal
	getErr error
	setErr error
}

func newMemCache() *memCache { return &memCache{items: map[string]*Principal{}} }

func (m *memCache) Get(_ context.Context, key string) (*Principal, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return p, nil
}

func (m *memCache) Set(_ context.Context, key string, p *Principal, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.items[key] = p
	return nil
}
