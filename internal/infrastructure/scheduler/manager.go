// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/girder-hq/girder/internal/infrastructure/metrics"
	"github.com/girder-hq/girder/internal/shared/biztime"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items
// processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager manages all scheduled jobs on a single gocron instance.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance using the
// business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterReconcileJob schedules the subscription reconciliation sweep.
// Singleton mode guards against overlapping passes when one run exceeds the
// interval.
func (m *SchedulerManager) RegisterReconcileJob(job BatchJob, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()

			touched, err := job.Execute(ctx)
			if err != nil {
				m.logger.Errorw("reconcile job failed", "touched", touched, "error", err)
				return
			}
			metrics.Get().RecordReconciled(touched)
			if touched > 0 {
				m.logger.Infow("reconcile job finished", "touched", touched)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("governance", "reconcile"),
		gocron.WithName("subscription-reconciler"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered reconcile job", "interval", interval.String())
	return nil
}

// Start begins executing all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}
	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started")
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}
	if err := m.scheduler.Shutdown(); err != nil {
		return err
	}
	m.started = false
	m.logger.Infow("scheduler stopped")
	return nil
}
