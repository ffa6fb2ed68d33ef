package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/shared/logger"
)

func TestAccountHandler(t *testing.T) {
	f := newFixture()
	h := NewAccountHandler(f.store, logger.NewNop())

	w, env := serve(t, member, http.MethodPost, "/v1/accounts", "/v1/accounts", h.CreateAccount,
		map[string]any{"provider": "github", "provider_account_id": "42"})
	require.Equal(t, http.StatusCreated, w.Code)
	own := decode[model.Account](t, env.Result)
	assert.Equal(t, memberID, own.UserID)

	w, _ = serve(t, member, http.MethodPost, "/v1/accounts", "/v1/accounts", h.CreateAccount,
		map[string]any{"user_id": adminID, "provider": "github", "provider_account_id": "43"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = serve(t, admin, http.MethodPost, "/v1/accounts", "/v1/accounts", h.CreateAccount,
		map[string]any{"user_id": f.assignee.ID, "provider": "google", "provider_account_id": "g-1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = serve(t, admin, http.MethodPost, "/v1/accounts", "/v1/accounts", h.CreateAccount,
		map[string]any{"user_id": uuid.NewString(), "provider": "google", "provider_account_id": "g-2"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = serve(t, member, http.MethodGet, "/v1/accounts", "/v1/accounts?user_id="+f.assignee.ID, h.ListAccounts, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]model.Account](t, env.Result)
	require.Len(t, listed, 1, "members only see their own accounts")
	assert.Equal(t, own.ID, listed[0].ID)

	w, env = serve(t, admin, http.MethodGet, "/v1/accounts", "/v1/accounts", h.ListAccounts, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Account](t, env.Result), 2)

	other := listed[0]
	for _, a := range f.store.accounts {
		if a.UserID == f.assignee.ID {
			other = a
		}
	}
	w, _ = serve(t, member, http.MethodDelete, "/v1/accounts/:id", "/v1/accounts/"+other.ID, h.DeleteAccount, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = serve(t, member, http.MethodDelete, "/v1/accounts/:id", "/v1/accounts/"+own.ID, h.DeleteAccount, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
