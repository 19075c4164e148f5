package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Default cron expressions, evaluated in the configured timezone.
const (
	DefaultDailyBatchCron  = "0 6 * * *"
	DefaultCleanupLogsCron = "0 2 * * 1"
	DefaultPingCron        = "*/30 * * * *"
)

// JobSchedule configures one recurring job.
type JobSchedule struct {
	Cron    string `yaml:"cron"`
	Enabled bool   `yaml:"enabled"`
}

// Schedule is the recurring job configuration, read from schedule.yaml.
type Schedule struct {
	DailyBatch  JobSchedule `yaml:"daily_batch"`
	CleanupLogs JobSchedule `yaml:"cleanup_logs"`
	Ping        JobSchedule `yaml:"ping"`

	// RetentionDays overrides LOG_RETENTION_DAYS for the cleanup job when > 0.
	RetentionDays int `yaml:"retention_days"`
}

// DefaultSchedule returns the built-in schedule: daily batch at 06:00,
// cleanup on Mondays at 02:00, ping disabled.
func DefaultSchedule() Schedule {
	return Schedule{
		DailyBatch:  JobSchedule{Cron: DefaultDailyBatchCron, Enabled: true},
		CleanupLogs: JobSchedule{Cron: DefaultCleanupLogsCron, Enabled: true},
		Ping:        JobSchedule{Cron: DefaultPingCron, Enabled: false},
	}
}

// LoadSchedule reads schedule overrides from path. A missing file yields
// DefaultSchedule. Keys absent from the file keep their defaults.
func LoadSchedule(path string) (Schedule, error) {
	s := DefaultSchedule()

	data, err := os.ReadFile(path) //nolint:gosec // path is under the configured data dir
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading schedule file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing schedule file %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("schedule file %q: %w", path, err)
	}
	return s, nil
}

// Validate checks that every enabled job has a cron expression.
func (s Schedule) Validate() error {
	jobs := map[string]JobSchedule{
		"daily_batch":  s.DailyBatch,
		"cleanup_logs": s.CleanupLogs,
		"ping":         s.Ping,
	}
	for name, j := range jobs {
		if j.Enabled && j.Cron == "" {
			return fmt.Errorf("job %s is enabled but has no cron expression", name)
		}
	}
	if s.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative, got %d", s.RetentionDays)
	}
	return nil
}
