package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Roles carried by the authenticated principal
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// Notification kinds
const (
	NotificationJobCreated       = "job_created"
	NotificationJobAssigned      = "job_assigned"
	NotificationJobStatusChanged = "job_status_changed"
	NotificationCommentAdded     = "comment_added"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
)

// ValidationError describes a rejected field value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsPrivileged reports whether role may manage tenant-wide resources
func IsPrivileged(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// Supported UI preferences
var (
	Locales = []string{"en", "vi", "de", "fr", "ja"}
	Themes  = []string{"light", "dark", "system"}
)

// DefaultSettings are served until a user saves their own
const (
	DefaultLocale = "en"
	DefaultTheme  = "system"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsHexColor reports whether s is a six digit hex color such as #1A2b3C
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}
