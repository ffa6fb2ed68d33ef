package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/opsboard/internal/api/dto"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/shared/logger"
)

func seedNotifications(f *fixture, userID string, n int) []string {
	ids := make([]string, 0, n)
	for i := range n {
		note := model.Notification{
			ID:        uuid.NewString(),
			TenantID:  testTenant,
			UserID:    userID,
			Kind:      "job_assigned",
			Title:     "Assigned",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		f.store.notifications[note.ID] = note
		ids = append(ids, note.ID)
	}
	return ids
}

func TestNotifications(t *testing.T) {
	f := newFixture()
	mine := seedNotifications(f, memberID, 3)
	theirs := seedNotifications(f, adminID, 1)
	h := NewNotificationHandler(f.store, logger.NewNop())

	w, env := serve(t, member, http.MethodGet, "/v1/notifications", "/v1/notifications", h.ListNotifications, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.NotificationsResponse](t, env.Result)
	assert.Len(t, list.Notifications, 3)
	assert.Equal(t, 3, list.UnreadCount)

	w, _ = serve(t, member, http.MethodPatch, "/v1/notifications/:id/read", "/v1/notifications/"+mine[0]+"/read", h.MarkRead, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = serve(t, member, http.MethodPatch, "/v1/notifications/:id/read", "/v1/notifications/"+mine[0]+"/read", h.MarkRead, nil)
	require.Equal(t, http.StatusOK, w.Code, "idempotent")
	assert.NotNil(t, decode[model.Notification](t, env.Result).ReadAt)

	w, _ = serve(t, member, http.MethodPatch, "/v1/notifications/:id/read", "/v1/notifications/"+theirs[0]+"/read", h.MarkRead, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "cannot read someone else's notification")

	w, env = serve(t, member, http.MethodGet, "/v1/notifications", "/v1/notifications?unread=true", h.ListNotifications, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[dto.NotificationsResponse](t, env.Result)
	assert.Len(t, list.Notifications, 2)
	assert.Equal(t, 2, list.UnreadCount)

	w, env = serve(t, member, http.MethodPost, "/v1/notifications/read-all", "/v1/notifications/read-all", h.MarkAllRead, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":2}`, string(env.Result))

	assert.Nil(t, f.store.notifications[theirs[0]].ReadAt)
}

func TestNotifications_LimitValidation(t *testing.T) {
	f := newFixture()
	w, _ := serve(t, member, http.MethodGet, "/v1/notifications", "/v1/notifications?limit=1000",
		NewNotificationHandler(f.store, logger.NewNop()).ListNotifications, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
