package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/opsboard/internal/api/auth"
	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/model"
)

const testTenant = "tenant-1"

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

var (
	adminID  = uuid.NewString()
	memberID = uuid.NewString()

	admin  = &auth.Principal{UserID: adminID, TenantID: testTenant, Role: domain.RoleAdmin}
	member = &auth.Principal{UserID: memberID, TenantID: testTenant, Role: domain.RoleMember}
)

// serve runs one request through a single route with p as the caller
func serve(t *testing.T, p *auth.Principal, method, route, path string, h gin.HandlerFunc, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		auth.WithPrincipal(c, p)
		c.Next()
	}, h)

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type fixture struct {
	store    *memStore
	emitter  *recordingEmitter
	backlog  model.JobStatus
	doing    model.JobStatus
	done     model.JobStatus
	jobType  model.JobType
	assignee model.User
}

func newFixture() *fixture {
	f := &fixture{store: newMemStore(), emitter: &recordingEmitter{}}

	now := time.Now().UTC()
	for i, name := range []string{"Backlog", "Doing", "Done"} {
		s := model.JobStatus{
			ID:        uuid.NewString(),
			TenantID:  testTenant,
			Name:      name,
			Color:     "#AABBCC",
			Order:     i,
			IsFinal:   name == "Done",
			CreatedAt: now,
			UpdatedAt: now,
		}
		f.store.statuses[s.ID] = s
		switch i {
		case 0:
			f.backlog = s
		case 1:
			f.doing = s
		case 2:
			f.done = s
		}
	}

	f.jobType = model.JobType{ID: uuid.NewString(), TenantID: testTenant, Name: "Invoice", Color: "#123456"}
	f.store.jobTypes[f.jobType.ID] = f.jobType

	f.assignee = model.User{ID: uuid.NewString(), TenantID: testTenant, Email: "a@example.com", Name: "Ann", Role: domain.RoleMember}
	f.store.users[f.assignee.ID] = f.assignee
	f.store.users[adminID] = model.User{ID: adminID, TenantID: testTenant, Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin}
	f.store.users[memberID] = model.User{ID: memberID, TenantID: testTenant, Email: "m@example.com", Name: "Member", Role: domain.RoleMember}

	return f
}

func (f *fixture) addJob(statusID string, createdAt time.Time) model.Job {
	job := model.Job{
		ID:        uuid.NewString(),
		TenantID:  testTenant,
		Title:     "Job " + createdAt.Format(time.RFC3339Nano),
		StatusID:  statusID,
		TypeID:    f.jobType.ID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	f.store.jobs[job.ID] = job
	return job
}

