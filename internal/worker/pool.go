package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/opsboard/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop processes messages until the dispatcher closes the channel.
// In-flight messages finish even after shutdown starts.
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started", slog.String("worker_name", workerName))

	processCtx := context.WithoutCancel(ctx)

	for msg := range w.messages {
		event := msg.Event
		err := w.processor.Process(processCtx, event, w.jobTimeout)

		if err != nil {
			requeue := shouldRequeue(err)
			w.metrics.processed.WithLabelValues(string(event.Type), "failed").Inc()

			w.logger.Error("Event processing failed",
				slog.String("worker_name", workerName),
				slog.String("event_id", event.ID),
				slog.String("type", string(event.Type)),
				slog.Bool("requeue", requeue),
				slog.Any("error", err),
			)

			if nackErr := msg.Delivery.Nack(false, requeue); nackErr != nil {
				w.logger.Error("Failed to NACK message",
					slog.String("event_id", event.ID),
					slog.Any("error", nackErr),
				)
			}
			continue
		}

		w.metrics.processed.WithLabelValues(string(event.Type), "ok").Inc()
		if ackErr := msg.Delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("event_id", event.ID),
				slog.Any("error", ackErr),
			)
		}
	}

	w.logger.Debug("Worker goroutine stopping - messages closed", slog.String("worker_name", workerName))
}

// shouldRequeue requeues transient failures only; everything else would fail again
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrInvalidEvent) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
