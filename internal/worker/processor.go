package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apidomain "github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/events"
	"github.com/cuongbtq/opsboard/internal/worker/domain"
)

// notificationNamespace derives notification ids from event id and
// recipient, so a redelivered event does not notify twice
var notificationNamespace = uuid.MustParse("6f1c2a4e-7b0d-4f8e-9a51-3c2d8e7f9b10")

// Store is what the processor needs from persistence
type Store interface {
	CreateNotification(ctx context.Context, n *model.Notification) (bool, error)
	StatusName(ctx context.Context, tenantID, statusID string) (string, error)
}

// Processor turns domain events into in-app notifications
type Processor struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewProcessor(store Store, logger *slog.Logger) *Processor {
	return &Processor{store: store, logger: logger, now: time.Now}
}

// Process handles one event with a deadline of timeout. Storage failures
// come back as RetryableError.
func (p *Processor) Process(ctx context.Context, event events.Event, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	n, err := p.build(ctx, event)
	if err != nil {
		return err
	}
	if n == nil {
		p.logger.Debug("Event needs no notification",
			slog.String("event_id", event.ID),
			slog.String("type", string(event.Type)),
		)
		return nil
	}

	created, err := p.store.CreateNotification(ctx, n)
	if err != nil {
		return domain.NewRetryableError(err)
	}

	p.logger.Info("Notification processed",
		slog.String("event_id", event.ID),
		slog.String("type", string(event.Type)),
		slog.String("user_id", n.UserID),
		slog.Bool("created", created),
	)
	return nil
}

// build decides who hears about event and what they read. It returns nil
// when nobody should be notified.
func (p *Processor) build(ctx context.Context, event events.Event) (*model.Notification, error) {
	recipient := event.AssigneeID
	if recipient == "" {
		return nil, nil
	}

	var kind, title, body string

	switch event.Type {
	case events.JobCreated:
		kind = apidomain.NotificationJobCreated
		title = "New job assigned to you"
		body = event.JobTitle

	case events.JobAssigned:
		kind = apidomain.NotificationJobAssigned
		title = "You were assigned a job"
		body = event.JobTitle

	case events.JobStatusChanged:
		if recipient == event.ActorID {
			return nil, nil
		}
		kind = apidomain.NotificationJobStatusChanged
		title = fmt.Sprintf("%s changed status", event.JobTitle)
		body = p.describeMove(ctx, event)

	case events.CommentCreated:
		if recipient == event.ActorID {
			return nil, nil
		}
		kind = apidomain.NotificationCommentAdded
		title = fmt.Sprintf("New comment on %s", event.JobTitle)
		body = event.Excerpt

	default:
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidEvent, event.Type)
	}

	jobID := event.JobID
	return &model.Notification{
		ID:        uuid.NewSHA1(notificationNamespace, []byte(event.ID+"/"+recipient)).String(),
		TenantID:  event.TenantID,
		UserID:    recipient,
		Kind:      kind,
		Title:     title,
		Body:      body,
		JobID:     &jobID,
		CreatedAt: p.now().UTC(),
	}, nil
}

// describeMove names both statuses when they still exist. Lookup failures
// only degrade the text.
func (p *Processor) describeMove(ctx context.Context, event events.Event) string {
	from, errFrom := p.store.StatusName(ctx, event.TenantID, event.FromStatus)
	to, errTo := p.store.StatusName(ctx, event.TenantID, event.ToStatus)
	if err := errors.Join(errFrom, errTo); err != nil {
		p.logger.Warn("Failed to resolve status names",
			slog.String("event_id", event.ID),
			slog.Any("error", err),
		)
	}

	switch {
	case from != "" && to != "":
		return fmt.Sprintf("Moved from %s to %s", from, to)
	case to != "":
		return "Moved to " + to
	default:
		return "Status changed"
	}
}
