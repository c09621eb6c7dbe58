package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/ShuttleHub/config"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	applied int
	maxAges []time.Duration
	err     error
}

func (r *recorder) ApplyScheduledPromotions(ctx context.Context) (services.ApplyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied++
	return services.ApplyResult{Promotions: 1, Updated: 2}, r.err
}

func (r *recorder) SweepStalePending(ctx context.Context, maxAge time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxAges = append(r.maxAges, maxAge)
	return 3, r.err
}

func TestNewSchedulerSkipsEmptySchedules(t *testing.T) {
	r := &recorder{}
	s, err := NewScheduler(config.JobsConfig{}, nil, r, r)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Jobs())
	s.Start()
	s.Stop()

	s, err = NewScheduler(config.JobsConfig{ApplyPromotions: "@hourly", StaleOrderSweep: "*/15 * * * *"}, time.UTC, r, r)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Jobs())
}

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	r := &recorder{}
	_, err := NewScheduler(config.JobsConfig{ApplyPromotions: "every tuesday"}, nil, r, r)
	assert.Error(t, err)
}

func TestJobsCallServices(t *testing.T) {
	r := &recorder{}
	ApplyPromotionsJob(r)()
	SweepJob(r, 24*time.Hour)()
	assert.Equal(t, 1, r.applied)
	assert.Equal(t, []time.Duration{24 * time.Hour}, r.maxAges)

	// failures are logged, never panic
	r.err = errors.New("db down")
	ApplyPromotionsJob(r)()
	SweepJob(r, time.Hour)()
	assert.Equal(t, 2, r.applied)
}
