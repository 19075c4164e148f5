// Package scheduler runs the recurring weather jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/shaharia-lab/weatherbrief/internal/config"
	"github.com/shaharia-lab/weatherbrief/internal/lock"
	"github.com/shaharia-lab/weatherbrief/internal/service"
)

// Job names, also used as gocron job names and metric labels.
const (
	JobDailyBatch  = "daily_batch"
	JobCleanupLogs = "cleanup_logs"
	JobPing        = "ping"
)

// dailyLockTTL keeps a claimed daily slot from being run again by another
// replica for most of the day.
const dailyLockTTL = 20 * time.Hour

// jobNamespace seeds the deterministic gocron job IDs.
var jobNamespace = uuid.MustParse("4f1f6f0e-6b0a-4c57-9a8e-2f7f3b1d8c21")

// Jobs is the subset of service.JobService the scheduler triggers.
type Jobs interface {
	RunDailyBatch(ctx context.Context) (*service.BatchSummary, error)
	CleanupOldLogs(ctx context.Context, retentionDays int) (*service.CleanupSummary, error)
	Ping(ctx context.Context) string
}

// Config holds the scheduler configuration.
type Config struct {
	Jobs     Jobs
	Schedule config.Schedule
	// Location is the timezone cron expressions are evaluated in. Nil means UTC.
	Location *time.Location
	// Locker guards the daily batch across replicas. Nil means lock.Noop.
	Locker lock.Locker
	// RetentionDays is passed to the cleanup job unless Schedule.RetentionDays is set.
	RetentionDays  int
	Logger         *slog.Logger
	MaxConcurrency int
}

// JobInfo describes a registered job.
type JobInfo struct {
	Name    string    `json:"name"`
	ID      string    `json:"id"`
	Cron    string    `json:"cron"`
	NextRun time.Time `json:"next_run"`
}

// Scheduler manages recurring job execution using gocron.
type Scheduler struct {
	cron      gocron.Scheduler
	cfg       Config
	jobs      map[string]gocron.Job
	crons     map[string]string
	mu        sync.Mutex
	semaphore chan struct{}
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Locker == nil {
		cfg.Locker = lock.Noop{}
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location))
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 2
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron,
		cfg:       cfg,
		jobs:      make(map[string]gocron.Job),
		crons:     make(map[string]string),
		semaphore: make(chan struct{}, maxConc),
		logger:    cfg.Logger,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start registers every enabled job and starts the gocron scheduler.
func (s *Scheduler) Start(_ context.Context) error {
	entries := []struct {
		name  string
		sched config.JobSchedule
	}{
		{JobDailyBatch, s.cfg.Schedule.DailyBatch},
		{JobCleanupLogs, s.cfg.Schedule.CleanupLogs},
		{JobPing, s.cfg.Schedule.Ping},
	}

	for _, e := range entries {
		if !e.sched.Enabled {
			continue
		}
		if err := s.scheduleJob(e.name, e.sched.Cron); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("job scheduler started",
		"jobs", len(s.jobs), "timezone", s.cfg.Location.String())
	return nil
}

// Stop cancels running jobs' context and shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	s.cancel()
	return s.cron.Shutdown()
}

// Jobs lists the registered jobs with their next run time, sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for name, job := range s.jobs {
		info := JobInfo{Name: name, ID: job.ID().String(), Cron: s.crons[name]}
		if next, err := job.NextRun(); err == nil {
			info.NextRun = next
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// scheduleJob adds a cron job in singleton mode so a slow run is never
// overlapped by the next tick.
func (s *Scheduler) scheduleJob(name, expr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.cron.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() { s.executeJob(name) }),
		gocron.WithName(name),
		gocron.WithIdentifier(uuid.NewSHA1(jobNamespace, []byte(name))),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("scheduling job %q with cron %q: %w", name, expr, err)
	}

	s.jobs[name] = job
	s.crons[name] = expr
	s.logger.Info("job scheduled", "job", name, "cron", expr)
	return nil
}
