package domain

import "errors"

var (
	// ErrInvalidEvent is returned when a message body is not a usable event
	ErrInvalidEvent = errors.New("invalid event")

	// ErrDeliveriesClosed is reported when the broker closes the delivery
	// channel while the worker is running
	ErrDeliveriesClosed = errors.New("delivery channel closed by broker")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
