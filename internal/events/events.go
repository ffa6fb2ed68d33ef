// Package events defines the domain events the API publishes to RabbitMQ and
// the notification worker consumes. The event type doubles as routing key.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	JobCreated       Type = "job.created"
	JobAssigned      Type = "job.assigned"
	JobStatusChanged Type = "job.status_changed"
	CommentCreated   Type = "comment.created"
)

const ContentType = "application/json"

// Event is the wire format. Fields irrelevant to a type are left empty.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	TenantID   string    `json:"tenant_id"`
	ActorID    string    `json:"actor_id"`
	JobID      string    `json:"job_id"`
	JobTitle   string    `json:"job_title"`
	AssigneeID string    `json:"assignee_id,omitempty"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	CommentID  string    `json:"comment_id,omitempty"`
	Excerpt    string    `json:"excerpt,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time
func New(t Type, tenantID, actorID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		TenantID:   tenantID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Known reports whether t is one of the published event types
func (t Type) Known() bool {
	switch t {
	case JobCreated, JobAssigned, JobStatusChanged, CommentCreated:
		return true
	}
	return false
}

// Decode parses and validates a message body
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if !e.Type.Known() {
		return Event{}, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.TenantID == "" {
		return Event{}, fmt.Errorf("event %s has no tenant_id", e.ID)
	}
	if _, err := uuid.Parse(e.JobID); err != nil {
		return Event{}, fmt.Errorf("event %s has invalid job_id: %w", e.ID, err)
	}
	return e, nil
}

// Publisher is satisfied by the RabbitMQ client
type Publisher interface {
	PublishWithRetry(ctx context.Context, routingKey string, body []byte, contentType string) error
}

// Emitter serializes events onto a Publisher
type Emitter struct {
	publisher Publisher
}

func NewEmitter(publisher Publisher) *Emitter {
	return &Emitter{publisher: publisher}
}

func (e *Emitter) Emit(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return e.publisher.PublishWithRetry(ctx, string(event.Type), body, ContentType)
}
