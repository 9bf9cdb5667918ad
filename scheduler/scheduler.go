package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"loan-simulator/logger"
	"loan-simulator/repository"
)

const pruneTimeout = 30 * time.Second

// Scheduler runs the history retention job.
type Scheduler struct {
	Cron    *cron.Cron
	History repository.HistoryRepository
	MaxAge  time.Duration

	now func() time.Time
}

// NewScheduler creates a Scheduler that drops records older than maxAge.
func NewScheduler(history repository.HistoryRepository, maxAge time.Duration) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		History: history,
		MaxAge:  maxAge,
		now:     time.Now,
	}
}

// Register adds the retention task on the given six-field cron spec.
func (s *Scheduler) Register(retentionCron string) error {
	if _, err := s.Cron.AddFunc(retentionCron, s.retentionTask); err != nil {
		return fmt.Errorf("register retention task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// PruneNow deletes every record older than MaxAge.
func (s *Scheduler) PruneNow(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.MaxAge)
	removed, err := s.History.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return removed, nil
}

func (s *Scheduler) retentionTask() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	removed, err := s.PruneNow(ctx)
	if err != nil {
		logger.Error("retention task: %v", err)
		return
	}
	logger.Info("retention task removed %d simulations", removed)
}
