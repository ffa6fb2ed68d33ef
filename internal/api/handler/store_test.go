package handler

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/api/storage"
	"github.com/cuongbtq/opsboard/internal/events"
)

// memStore is an in-memory stand-in for *storage.Storage
type memStore struct {
	mu            sync.Mutex
	jobs          map[string]model.Job
	statuses      map[string]model.JobStatus
	jobTypes      map[string]model.JobType
	channels      map[string]model.PaymentChannel
	departments   map[string]model.Department
	users         map[string]model.User
	settings      map[string]model.UserSettings
	comments      map[string]model.Comment
	notifications map[string]model.Notification
	accounts      map[string]model.Account

	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		jobs:          map[string]model.Job{},
		statuses:      map[string]model.JobStatus{},
		jobTypes:      map[string]model.JobType{},
		channels:      map[string]model.PaymentChannel{},
		departments:   map[string]model.Department{},
		users:         map[string]model.User{},
		settings:      map[string]model.UserSettings{},
		comments:      map[string]model.Comment{},
		notifications: map[string]model.Notification{},
		accounts:      map[string]model.Account{},
	}
}

func get[T any](m map[string]T, tenantID, id string, tenantOf func(T) string) (*T, error) {
	v, ok := m[id]
	if !ok || tenantOf(v) != tenantID {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func del[T any](m map[string]T, tenantID, id string, tenantOf func(T) string) error {
	v, ok := m[id]
	if !ok || tenantOf(v) != tenantID {
		return domain.ErrNotFound
	}
	delete(m, id)
	return nil
}

func put[T any](m map[string]T, id, tenantID string, v T, tenantOf func(T) string) error {
	old, ok := m[id]
	if !ok || tenantOf(old) != tenantID {
		return domain.ErrNotFound
	}
	m[id] = v
	return nil
}

func jobTenant(j model.Job) string                { return j.TenantID }
func statusTenant(s model.JobStatus) string       { return s.TenantID }
func typeTenant(t model.JobType) string           { return t.TenantID }
func channelTenant(p model.PaymentChannel) string { return p.TenantID }
func deptTenant(d model.Department) string        { return d.TenantID }
func userTenant(u model.User) string              { return u.TenantID }
func commentTenant(c model.Comment) string        { return c.TenantID }
func accountTenant(a model.Account) string        { return a.TenantID }

// jobs

func (m *memStore) CreateJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *memStore) GetJob(_ context.Context, tenantID, id string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.jobs, tenantID, id, jobTenant)
}

func (m *memStore) UpdateJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.jobs, job.ID, job.TenantID, *job, jobTenant)
}

func (m *memStore) MoveJob(_ context.Context, tenantID, id, fromStatusID, toStatusID string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, err := get(m.jobs, tenantID, id, jobTenant)
	if err != nil {
		return nil, err
	}
	if job.StatusID != fromStatusID {
		return nil, domain.ErrConflict
	}
	job.StatusID = toStatusID
	job.UpdatedAt = time.Now().UTC()
	m.jobs[id] = *job
	return job, nil
}

func (m *memStore) DeleteJob(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return del(m.jobs, tenantID, id, jobTenant)
}

func (m *memStore) ListJobs(_ context.Context, tenantID string, f storage.JobFilter) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Job{}
	for _, j := range m.jobs {
		if j.TenantID != tenantID ||
			(f.StatusID != "" && j.StatusID != f.StatusID) ||
			(f.TypeID != "" && j.TypeID != f.TypeID) ||
			(f.Search != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(f.Search))) {
			continue
		}
		if f.Cursor != nil {
			if j.CreatedAt.After(f.Cursor.CreatedAt) ||
				(j.CreatedAt.Equal(f.Cursor.CreatedAt) && j.ID >= f.Cursor.ID) {
				continue
			}
		}
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID > out[b].ID
	})
	if len(out) > f.PageSize+1 {
		out = out[:f.PageSize+1]
	}
	return out, nil
}

// job statuses

func (m *memStore) ListJobStatuses(_ context.Context, tenantID string) ([]model.JobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.JobStatus{}
	for _, s := range m.statuses {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Order < out[b].Order })
	return out, nil
}

func (m *memStore) GetJobStatus(_ context.Context, tenantID, id string) (*model.JobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.statuses, tenantID, id, statusTenant)
}

func (m *memStore) CreateJobStatus(_ context.Context, s *model.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[s.ID] = *s
	return nil
}

func (m *memStore) UpdateJobStatus(_ context.Context, s *model.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.statuses, s.ID, s.TenantID, *s, statusTenant)
}

func (m *memStore) DeleteJobStatus(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.StatusID == id {
			return &domain.ValidationError{Message: "referenced resource is missing or still in use"}
		}
	}
	return del(m.statuses, tenantID, id, statusTenant)
}

func (m *memStore) ReorderJobStatuses(_ context.Context, tenantID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		s, err := get(m.statuses, tenantID, id, statusTenant)
		if err != nil {
			return err
		}
		s.Order = i
		m.statuses[id] = *s
	}
	return nil
}

// job types

func (m *memStore) ListJobTypes(_ context.Context, tenantID string) ([]model.JobType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.JobType{}
	for _, t := range m.jobTypes {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetJobType(_ context.Context, tenantID, id string) (*model.JobType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.jobTypes, tenantID, id, typeTenant)
}

func (m *memStore) CreateJobType(_ context.Context, t *model.JobType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.jobTypes {
		if existing.TenantID == t.TenantID && existing.Name == t.Name {
			return domain.ErrConflict
		}
	}
	m.jobTypes[t.ID] = *t
	return nil
}

func (m *memStore) UpdateJobType(_ context.Context, t *model.JobType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.jobTypes, t.ID, t.TenantID, *t, typeTenant)
}

func (m *memStore) DeleteJobType(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return del(m.jobTypes, tenantID, id, typeTenant)
}

// payment channels

func (m *memStore) ListPaymentChannels(_ context.Context, tenantID string, activeOnly bool) ([]model.PaymentChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.PaymentChannel{}
	for _, p := range m.channels {
		if p.TenantID == tenantID && (!activeOnly || p.IsActive) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetPaymentChannel(_ context.Context, tenantID, id string) (*model.PaymentChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.channels, tenantID, id, channelTenant)
}

func (m *memStore) CreatePaymentChannel(_ context.Context, p *model.PaymentChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[p.ID] = *p
	return nil
}

func (m *memStore) UpdatePaymentChannel(_ context.Context, p *model.PaymentChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.channels, p.ID, p.TenantID, *p, channelTenant)
}

func (m *memStore) DeletePaymentChannel(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return del(m.channels, tenantID, id, channelTenant)
}

// departments

func (m *memStore) ListDepartments(_ context.Context, tenantID string) ([]model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Department{}
	for _, d := range m.departments {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) GetDepartment(_ context.Context, tenantID, id string) (*model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.departments, tenantID, id, deptTenant)
}

func (m *memStore) CreateDepartment(_ context.Context, d *model.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.ID] = *d
	return nil
}

func (m *memStore) UpdateDepartment(_ context.Context, d *model.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.departments, d.ID, d.TenantID, *d, deptTenant)
}

func (m *memStore) DeleteDepartment(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return del(m.departments, tenantID, id, deptTenant)
}

// users

func (m *memStore) ListUsers(_ context.Context, tenantID string, f storage.UserFilter) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, u := range m.users {
		if u.TenantID != tenantID {
			continue
		}
		if f.DepartmentID != "" && (u.DepartmentID == nil || *u.DepartmentID != f.DepartmentID) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memStore) GetUser(_ context.Context, tenantID, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.users, tenantID, id, userTenant)
}

func (m *memStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) UpdateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.users, u.ID, u.TenantID, *u, userTenant)
}

func (m *memStore) DeleteUser(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return del(m.users, tenantID, id, userTenant)
}

func (m *memStore) GetUserSettings(_ context.Context, tenantID, userID string) (*model.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok || s.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) UpsertUserSettings(_ context.Context, s *model.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.UserID] = *s
	return nil
}

// comments

func (m *memStore) ListComments(_ context.Context, tenantID, jobID string) ([]model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Comment{}
	for _, c := range m.comments {
		if c.TenantID == tenantID && c.JobID == jobID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}

func (m *memStore) GetComment(_ context.Context, tenantID, id string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.comments, tenantID, id, commentTenant)
}

func (m *memStore) CreateComment(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = *c
	return nil
}

func (m *memStore) UpdateComment(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return put(m.comments, c.ID, c.TenantID, *c, commentTenant)
}

func (m *memStore) DeleteComment(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return del(m.comments, tenantID, id, commentTenant)
}

// notifications

func (m *memStore) ListNotifications(_ context.Context, tenantID, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Notification{}
	for _, n := range m.notifications {
		if n.TenantID == tenantID && n.UserID == userID && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CountUnreadNotifications(_ context.Context, tenantID, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.TenantID == tenantID && n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *memStore) MarkNotificationRead(_ context.Context, tenantID, userID, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.TenantID != tenantID || n.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
		m.notifications[id] = n
	}
	return &n, nil
}

func (m *memStore) MarkAllNotificationsRead(_ context.Context, tenantID, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	now := time.Now().UTC()
	for id, n := range m.notifications {
		if n.TenantID == tenantID && n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			m.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

// accounts

func (m *memStore) ListAccounts(_ context.Context, tenantID, userID string) ([]model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Account{}
	for _, a := range m.accounts {
		if a.TenantID == tenantID && (userID == "" || a.UserID == userID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) GetAccount(_ context.Context, tenantID, id string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.accounts, tenantID, id, accountTenant)
}

func (m *memStore) CreateAccount(_ context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = *a
	return nil
}

func (m *memStore) DeleteAccount(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return del(m.accounts, tenantID, id, accountTenant)
}

// recordingEmitter captures emitted events
type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recordingEmitter) Emit(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingEmitter) Types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
