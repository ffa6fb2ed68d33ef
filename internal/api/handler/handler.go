// Package handler implements the HTTP endpoints. Each resource handler
// depends on a narrow store interface satisfied by *storage.Storage.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cuongbtq/opsboard/internal/api/auth"
	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/response"
	"github.com/cuongbtq/opsboard/internal/events"
)

// EventEmitter publishes domain events
type EventEmitter interface {
	Emit(ctx context.Context, event events.Event) error
}

// emit publishes best effort. The row is already committed, so a broker
// failure is logged and the request still succeeds.
func emit(ctx context.Context, emitter EventEmitter, logger *slog.Logger, event events.Event) {
	if emitter == nil {
		return
	}
	if err := emitter.Emit(ctx, event); err != nil {
		logger.Error("Failed to publish event",
			slog.String("event_id", event.ID),
			slog.String("type", string(event.Type)),
			slog.String("job_id", event.JobID),
			slog.Any("error", err),
		)
	}
}

// principal returns the authenticated caller. Routes are always mounted
// behind auth.Middleware, so a missing principal is a wiring bug.
func principal(c *gin.Context) *auth.Principal {
	p := auth.PrincipalFrom(c)
	if p == nil {
		panic("handler: route mounted without auth middleware")
	}
	return p
}

// pathID reads a UUID path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", name),
			[]response.FieldError{{Field: name, Message: "must be a valid UUID"}})
		return "", false
	}
	return id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		failBinding(c, "invalid request body", err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		failBinding(c, "invalid query parameters", err)
		return false
	}
	return true
}

func failBinding(c *gin.Context, message string, err error) {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		response.Fail(c, http.StatusBadRequest, message, nil)
		return
	}

	details := make([]response.FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		details = append(details, response.FieldError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	response.Fail(c, http.StatusBadRequest, message, details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid", "uuid|len=0":
		return "must be a valid UUID"
	case "hexcolor6":
		return "must be a hex color like #1A2B3C"
	case "locale":
		return "must be one of " + strings.Join(domain.Locales, ", ")
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "unique":
		return "must not contain duplicates"
	}
	return "is invalid (" + fe.Tag() + ")"
}

// nullable turns "" into nil for optional references
func nullable(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// ref is an id supplied by the caller that must name a row of the caller's
// tenant. A nil id is skipped.
type ref struct {
	field string
	id    *string
	check func(ctx context.Context, tenantID, id string) error
}

func refTo[T any](field string, id *string, get func(ctx context.Context, tenantID, id string) (*T, error)) ref {
	return ref{field: field, id: id, check: func(ctx context.Context, tenantID, id string) error {
		_, err := get(ctx, tenantID, id)
		return err
	}}
}

// checkRefs resolves every reference inside tenantID. Ids of other tenants
// look the same as missing ones and come back as a validation error on the
// field.
func checkRefs(ctx context.Context, tenantID string, refs ...ref) error {
	for _, r := range refs {
		if r.id == nil {
			continue
		}
		err := r.check(ctx, tenantID, *r.id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError(r.field, "unknown %s %s", strings.TrimSuffix(r.field, "_id"), *r.id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
