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

func TestJobTypeHandler(t *testing.T) {
	f := newFixture()
	h := NewJobTypeHandler(f.store, logger.NewNop())

	w, env := serve(t, admin, http.MethodPost, "/v1/job-types", "/v1/job-types", h.CreateJobType,
		map[string]any{"name": "Refund", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.JobType](t, env.Result)

	w, _ = serve(t, admin, http.MethodPost, "/v1/job-types", "/v1/job-types", h.CreateJobType,
		map[string]any{"name": "Refund", "color": "#ff0000"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = serve(t, admin, http.MethodPost, "/v1/job-types", "/v1/job-types", h.CreateJobType,
		map[string]any{"name": "Other", "color": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = serve(t, admin, http.MethodPatch, "/v1/job-types/:id", "/v1/job-types/"+created.ID, h.UpdateJobType,
		map[string]any{"description": "Money back"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[model.JobType](t, env.Result)
	assert.Equal(t, "Money back", updated.Description)
	assert.Equal(t, "#ff0000", updated.Color)

	w, _ = serve(t, admin, http.MethodPatch, "/v1/job-types/:id", "/v1/job-types/"+uuid.NewString(), h.UpdateJobType,
		map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = serve(t, admin, http.MethodDelete, "/v1/job-types/:id", "/v1/job-types/"+created.ID, h.DeleteJobType, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaymentChannelHandler(t *testing.T) {
	f := newFixture()
	h := NewPaymentChannelHandler(f.store, logger.NewNop())

	w, env := serve(t, admin, http.MethodPost, "/v1/payment-channels", "/v1/payment-channels", h.CreatePaymentChannel,
		map[string]any{"name": "Bank transfer"})
	require.Equal(t, http.StatusCreated, w.Code)
	bank := decode[model.PaymentChannel](t, env.Result)
	assert.True(t, bank.IsActive, "active by default")

	w, _ = serve(t, admin, http.MethodPost, "/v1/payment-channels", "/v1/payment-channels", h.CreatePaymentChannel,
		map[string]any{"name": "Cheque", "is_active": false})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = serve(t, member, http.MethodGet, "/v1/payment-channels", "/v1/payment-channels?active=true", h.ListPaymentChannels, nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decode[[]model.PaymentChannel](t, env.Result)
	require.Len(t, active, 1)
	assert.Equal(t, bank.ID, active[0].ID)

	w, env = serve(t, member, http.MethodGet, "/v1/payment-channels", "/v1/payment-channels", h.ListPaymentChannels, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.PaymentChannel](t, env.Result), 2)
}

func TestDepartmentHandler(t *testing.T) {
	f := newFixture()
	h := NewDepartmentHandler(f.store, logger.NewNop())

	w, env := serve(t, admin, http.MethodPost, "/v1/departments", "/v1/departments", h.CreateDepartment,
		map[string]any{"name": "Finance", "manager_id": adminID})
	require.Equal(t, http.StatusCreated, w.Code)
	dept := decode[model.Department](t, env.Result)

	u := f.store.users[f.assignee.ID]
	u.DepartmentID = &dept.ID
	f.store.users[u.ID] = u

	w, env = serve(t, member, http.MethodGet, "/v1/departments/:id/users", "/v1/departments/"+dept.ID+"/users", h.ListDepartmentUsers, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]model.User](t, env.Result)
	require.Len(t, users, 1)
	assert.Equal(t, f.assignee.ID, users[0].ID)

	w, _ = serve(t, member, http.MethodGet, "/v1/departments/:id/users", "/v1/departments/"+uuid.NewString()+"/users", h.ListDepartmentUsers, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = serve(t, admin, http.MethodPatch, "/v1/departments/:id", "/v1/departments/"+dept.ID, h.UpdateDepartment,
		map[string]any{"manager_id": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[model.Department](t, env.Result).ManagerID)
}
