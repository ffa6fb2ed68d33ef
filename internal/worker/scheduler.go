package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger deletes notifications read before a cutoff
type Purger interface {
	PurgeReadNotifications(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs periodic maintenance on a cron schedule
type Scheduler struct {
	cron      *cron.Cron
	purger    Purger
	retention time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduler registers the purge job under spec, a standard cron
// expression or descriptor such as "@daily"
func NewScheduler(spec string, retention time.Duration, purger Purger, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		purger:    purger,
		retention: retention,
		timeout:   5 * time.Minute,
		logger:    logger,
		now:       time.Now,
	}

	if _, err := s.cron.AddFunc(spec, s.purge); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started", slog.Duration("retention", s.retention))
	s.cron.Start()
}

// Stop waits for a running purge to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	n, err := s.purger.PurgeReadNotifications(ctx, cutoff)
	if err != nil {
		s.logger.Error("Notification purge failed", slog.Any("error", err))
		return
	}

	s.logger.Info("Notification purge finished",
		slog.Int64("deleted", n),
		slog.Time("cutoff", cutoff),
	)
}
