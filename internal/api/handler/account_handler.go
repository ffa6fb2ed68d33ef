package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/dto"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/api/response"
)

type AccountStore interface {
	GetUser(ctx context.Context, tenantID, id string) (*model.User, error)
	ListAccounts(ctx context.Context, tenantID, userID string) ([]model.Account, error)
	GetAccount(ctx context.Context, tenantID, id string) (*model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, tenantID, id string) error
}

// AccountHandler manages external identities linked to users. Members only
// see and link their own accounts.
type AccountHandler struct {
	logger *slog.Logger
	store  AccountStore
}

func NewAccountHandler(store AccountStore, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{logger: logger, store: store}
}

// ListAccounts handles GET /v1/accounts?user_id=
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var req dto.ListAccountsRequest
	if !bindQuery(c, &req) {
		return
	}

	p := principal(c)
	userID := req.UserID
	if !domain.IsPrivileged(p.Role) {
		userID = p.UserID
	}

	accounts, err := h.store.ListAccounts(c.Request.Context(), p.TenantID, userID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, accounts)
}

// CreateAccount handles POST /v1/accounts. user_id defaults to the caller.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	userID := req.UserID
	if userID == "" {
		userID = p.UserID
	}
	if userID != p.UserID && !domain.IsPrivileged(p.Role) {
		response.Error(c, h.logger, fmt.Errorf("%w: cannot link accounts for other users", domain.ErrForbidden))
		return
	}

	if _, err := h.store.GetUser(ctx, p.TenantID, userID); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	account := model.Account{
		ID:                uuid.NewString(),
		TenantID:          p.TenantID,
		UserID:            userID,
		Provider:          req.Provider,
		ProviderAccountID: req.ProviderAccountID,
		CreatedAt:         time.Now().UTC(),
	}

	if err := h.store.CreateAccount(ctx, &account); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, account)
}

// DeleteAccount handles DELETE /v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	account, err := h.store.GetAccount(ctx, p.TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if account.UserID != p.UserID && !domain.IsPrivileged(p.Role) {
		response.Error(c, h.logger, fmt.Errorf("%w: cannot unlink accounts of other users", domain.ErrForbidden))
		return
	}

	if err := h.store.DeleteAccount(ctx, p.TenantID, id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, "account unlinked")
}
