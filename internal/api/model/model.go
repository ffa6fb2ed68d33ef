// Package model holds the database row types. Nullable columns are pointers.
package model

import "time"

type Job struct {
	ID               string     `db:"id" json:"id"`
	TenantID         string     `db:"tenant_id" json:"tenant_id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	StatusID         string     `db:"status_id" json:"status_id"`
	TypeID           string     `db:"type_id" json:"type_id"`
	AssigneeID       *string    `db:"assignee_id" json:"assignee_id"`
	PaymentChannelID *string    `db:"payment_channel_id" json:"payment_channel_id"`
	DepartmentID     *string    `db:"department_id" json:"department_id"`
	Amount           int64      `db:"amount" json:"amount"`
	DueDate          *time.Time `db:"due_date" json:"due_date"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

type JobStatus struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	Name         string    `db:"name" json:"name"`
	Color        string    `db:"color" json:"color"`
	Order        int       `db:"sort_order" json:"order"`
	NextStatusID *string   `db:"next_status_id" json:"next_status_id"`
	PrevStatusID *string   `db:"prev_status_id" json:"prev_status_id"`
	IsFinal      bool      `db:"is_final" json:"is_final"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type JobType struct {
	ID          string    `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"tenant_id"`
	Name        string    `db:"name" json:"name"`
	Color       string    `db:"color" json:"color"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type PaymentChannel struct {
	ID          string    `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"tenant_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type User struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	DepartmentID *string   `db:"department_id" json:"department_id"`
	AvatarURL    string    `db:"avatar_url" json:"avatar_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type UserSettings struct {
	UserID             string    `db:"user_id" json:"user_id"`
	TenantID           string    `db:"tenant_id" json:"-"`
	Locale             string    `db:"locale" json:"locale"`
	Theme              string    `db:"theme" json:"theme"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	SidebarCollapsed   bool      `db:"sidebar_collapsed" json:"sidebar_collapsed"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type Department struct {
	ID          string    `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"tenant_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	ManagerID   *string   `db:"manager_id" json:"manager_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Comment struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	JobID     string    `db:"job_id" json:"job_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Notification struct {
	ID        string     `db:"id" json:"id"`
	TenantID  string     `db:"tenant_id" json:"tenant_id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Kind      string     `db:"kind" json:"kind"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	JobID     *string    `db:"job_id" json:"job_id"`
	ReadAt    *time.Time `db:"read_at" json:"read_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type Account struct {
	ID                string    `db:"id" json:"id"`
	TenantID          string    `db:"tenant_id" json:"tenant_id"`
	UserID            string    `db:"user_id" json:"user_id"`
	Provider          string    `db:"provider" json:"provider"`
	ProviderAccountID string    `db:"provider_account_id" json:"provider_account_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
