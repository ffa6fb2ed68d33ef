// Package worker consumes domain events from RabbitMQ and fans them out
// into per-user notifications.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/opsboard/internal/events"
	"github.com/cuongbtq/opsboard/internal/worker/domain"
)

// Consumer is the subset of the RabbitMQ client the worker uses
type Consumer interface {
	Consume(consumerTag string, prefetchCount int) (<-chan amqp.Delivery, error)
}

// EventProcessor handles one decoded event
type EventProcessor interface {
	Process(ctx context.Context, event events.Event, timeout time.Duration) error
}

// Config holds worker configuration
type Config struct {
	Logger            *slog.Logger
	Consumer          Consumer
	Processor         EventProcessor
	Registry          prometheus.Registerer
	Concurrency       int
	PrefetchCount     int
	JobTimeout        time.Duration
	HeartbeatInterval time.Duration
}

type metrics struct {
	processed *prometheus.CounterVec
	discarded prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_events_processed_total",
				Help: "Events handled by the notification worker by type and result",
			},
			[]string{"type", "result"},
		),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worker_events_discarded_total",
			Help: "Malformed messages rejected without requeue",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.processed, m.discarded)
	}
	return m
}

// Worker represents the notification worker
type Worker struct {
	logger            *slog.Logger
	consumer          Consumer
	processor         EventProcessor
	metrics           *metrics
	workerID          string
	concurrency       int
	prefetchCount     int
	jobTimeout        time.Duration
	heartbeatInterval time.Duration

	messages chan *domain.Message
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// done is closed when the dispatcher exits; err holds the reason when
	// it was not a Stop or a canceled context
	done chan struct{}
	err  atomic.Value
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	prefetch := cfg.PrefetchCount
	if prefetch < concurrency {
		prefetch = concurrency
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Worker{
		logger:            cfg.Logger,
		consumer:          cfg.Consumer,
		processor:         cfg.Processor,
		metrics:           newMetrics(cfg.Registry),
		workerID:          "notifier-" + uuid.NewString()[:8],
		concurrency:       concurrency,
		prefetchCount:     prefetch,
		jobTimeout:        timeout,
		heartbeatInterval: cfg.HeartbeatInterval,
		messages:          make(chan *domain.Message),
		stopChan:          make(chan struct{}),
		done:              make(chan struct{}),
	}
}

// Start subscribes to the queue and launches the pool. It returns once
// consuming has begun.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.running.Store(true)
	w.spawnWorkerPool(ctx)

	w.wg.Add(1)
	go w.startMessageDispatcher(ctx, deliveries)

	if w.heartbeatInterval > 0 {
		w.wg.Add(1)
		go w.heartbeat(ctx)
	}

	return nil
}

// Stop stops dispatching and waits for in-flight events to finish
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.running.Store(false)
		w.logger.Info("Worker stopped")
	})
}

// Running reports whether Start succeeded and the worker is still
// consuming
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Done is closed once the worker stops consuming, either through Stop, a
// canceled context or the broker closing the delivery channel
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Err returns domain.ErrDeliveriesClosed after the broker closed the
// delivery channel, nil otherwise
func (w *Worker) Err() error {
	if err, ok := w.err.Load().(error); ok {
		return err
	}
	return nil
}

func (w *Worker) heartbeat(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.logger.Debug("Worker heartbeat", slog.String("worker_id", w.workerID))
		}
	}
}
