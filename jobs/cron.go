// Package jobs runs the scheduled maintenance tasks.
package jobs

import (
	"context"
	"time"

	"github.com/Govind-619/ShuttleHub/config"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// PromotionApplier reprices products from the promotions in their window
type PromotionApplier interface {
	ApplyScheduledPromotions(ctx context.Context) (services.ApplyResult, error)
}

// StaleSweeper cancels pending orders that were never paid
type StaleSweeper interface {
	SweepStalePending(ctx context.Context, maxAge time.Duration) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
	jobs int
}

// NewScheduler registers the configured jobs. An empty schedule disables a job.
func NewScheduler(cfg config.JobsConfig, loc *time.Location, promotions PromotionApplier, orders StaleSweeper) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{cron: cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)}

	if cfg.ApplyPromotions != "" {
		if _, err := s.cron.AddFunc(cfg.ApplyPromotions, ApplyPromotionsJob(promotions)); err != nil {
			return nil, errors.Wrapf(err, "schedule promotions %q", cfg.ApplyPromotions)
		}
		s.jobs++
	}
	if cfg.StaleOrderSweep != "" {
		if _, err := s.cron.AddFunc(cfg.StaleOrderSweep, SweepJob(orders, cfg.StaleOrderMaxAge)); err != nil {
			return nil, errors.Wrapf(err, "schedule stale order sweep %q", cfg.StaleOrderSweep)
		}
		s.jobs++
	}
	return s, nil
}

// Jobs is the number of enabled jobs
func (s *Scheduler) Jobs() int {
	return s.jobs
}

func (s *Scheduler) Start() {
	if s.jobs == 0 {
		utils.LogInfo("No scheduled jobs configured")
		return
	}
	utils.LogInfo("Starting %d scheduled jobs", s.jobs)
	s.cron.Start()
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func ApplyPromotionsJob(promotions PromotionApplier) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		result, err := promotions.ApplyScheduledPromotions(ctx)
		if err != nil {
			utils.LogError("Scheduled promotion run failed: %v", err)
			return
		}
		utils.LogInfo("Scheduled promotion run: %d promotions, %d products", result.Promotions, result.Updated)
	}
}

func SweepJob(orders StaleSweeper, maxAge time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := orders.SweepStalePending(ctx, maxAge)
		if err != nil {
			utils.LogError("Stale order sweep failed: %v", err)
			return
		}
		if n > 0 {
			utils.LogInfo("Stale order sweep cancelled %d orders", n)
		}
	}
}
