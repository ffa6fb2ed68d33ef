package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/opsboard/shared/logger"
)

type fakePurger struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakePurger) PurgeReadNotifications(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 3, f.err
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler("every tuesday", time.Hour, &fakePurger{}, logger.NewNop())
	assert.Error(t, err)
}

func TestScheduler_PurgeUsesRetention(t *testing.T) {
	purger := &fakePurger{}
	s, err := NewScheduler("@daily", 30*24*time.Hour, purger, logger.NewNop())
	require.NoError(t, err)

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.purge()
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), purger.cutoff)

	purger.err = errors.New("db down")
	s.purge()
	assert.Equal(t, 2, purger.calls)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler("@every 1h", time.Hour, &fakePurger{}, logger.NewNop())
	require.NoError(t, err)
	s.Start()
	s.Stop()
}
