package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/shaharia-lab/weatherbrief/internal/metrics"
)

// executeJob runs one job with concurrency limiting and outcome recording.
func (s *Scheduler) executeJob(name string) {
	// Acquire semaphore.
	s.semaphore <- struct{}{}
	defer func() { <-s.semaphore }()

	start := time.Now()
	s.logger.Info("executing job", "job", name)

	err := s.runJob(name)
	status := "success"
	if err != nil {
		status = "failed"
		s.logger.Error("job failed", "job", name, "error", err,
			"duration", time.Since(start).String())
	} else {
		s.logger.Info("job finished", "job", name,
			"duration", time.Since(start).String())
	}
	metrics.JobRuns.WithLabelValues(name, status).Inc()
}

func (s *Scheduler) runJob(name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
		}
	}()

	switch name {
	case JobDailyBatch:
		return s.runDailyBatch()
	case JobCleanupLogs:
		days := s.cfg.Schedule.RetentionDays
		if days <= 0 {
			days = s.cfg.RetentionDays
		}
		summary, cleanupErr := s.cfg.Jobs.CleanupOldLogs(s.ctx, days)
		if cleanupErr != nil {
			return cleanupErr
		}
		s.logger.Info(summary.Message, "job", name)
		return nil
	case JobPing:
		s.cfg.Jobs.Ping(s.ctx)
		return nil
	default:
		return fmt.Errorf("unknown job %q", name)
	}
}

// runDailyBatch claims today's slot so that only one replica sends the
// daily batch, then runs it.
func (s *Scheduler) runDailyBatch() error {
	key := JobDailyBatch + ":" + time.Now().In(s.cfg.Location).Format("2006-01-02")

	ran, err := s.cfg.Locker.Once(s.ctx, key, dailyLockTTL, func(ctx context.Context) error {
		summary, batchErr := s.cfg.Jobs.RunDailyBatch(ctx)
		if batchErr != nil {
			return batchErr
		}
		s.logger.Info(summary.Message, "job", JobDailyBatch,
			"success", summary.Success, "failure", summary.Failure)
		return nil
	})
	if err != nil {
		return err
	}
	if !ran {
		s.logger.Info("daily batch already claimed by another instance", "lock_key", key)
	}
	return nil
}
