// Package auth authenticates requests against the external token
// validation endpoint. Nothing is verified locally.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cuongbtq/opsboard/internal/api/domain"
)

// ErrUnavailable means the validation endpoint could not give an answer
var ErrUnavailable = errors.New("authentication service unavailable")

// Principal is the authenticated caller
type Principal struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Validator resolves a token into a principal
type Validator interface {
	Validate(ctx context.Context, token string) (*Principal, error)
}

// RemoteValidator calls GET <url> with the token as bearer credentials and
// expects the standard envelope with a Principal as result
type RemoteValidator struct {
	url    string
	client *http.Client
}

func NewRemoteValidator(url string, timeout time.Duration) *RemoteValidator {
	return &RemoteValidator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type validateResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Result  Principal `json:"result"`
}

func (v *RemoteValidator) Validate(ctx context.Context, token string) (*Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: token rejected", domain.ErrUnauthenticated)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}

	if !body.Success {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnauthenticated, body.Message)
	}
	if body.Result.UserID == "" || body.Result.TenantID == "" {
		return nil, fmt.Errorf("%w: principal without user or tenant", domain.ErrUnauthenticated)
	}
	if body.Result.Role == "" {
		body.Result.Role = domain.RoleMember
	}

	return &body.Result, nil
}
