package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/shaharia-lab/weatherbrief/internal/notification"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// DefaultRetentionDays is how long notification log entries are kept.
const DefaultRetentionDays = 30

// ErrBatchInterrupted is returned when a batch stops early on cancellation.
var ErrBatchInterrupted = errors.New("weather batch interrupted")

// Dispatcher delivers reports to subscriptions and arbitrary addresses.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub *storage.Subscription, mode notification.Mode) notification.Outcome
	Preview(ctx context.Context, email, regionCode string) error
}

// BatchRunner dispatches a list of subscriptions sequentially.
type BatchRunner interface {
	RunBatch(ctx context.Context, subs []*storage.Subscription) notification.BatchResult
}

// Filter narrows a manual batch. SubscriptionID takes precedence over UserID;
// zero values mean "no filter".
type Filter struct {
	UserID         int64
	SubscriptionID int64
}

// BatchSummary is the result of a batch job.
type BatchSummary struct {
	notification.BatchResult
	Message string `json:"message"`
}

// SendResult is the result of a single send. Failures are reported here
// rather than as errors.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CleanupSummary is the result of a log cleanup run.
type CleanupSummary struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
	Message string    `json:"message"`
}

// JobService exposes the externally triggerable jobs: the daily batch,
// single sends, log cleanup and a diagnostic ping.
//
// RunDailyBatch and RunBatchFor return ErrBatchInterrupted together with the
// partial summary when the context is canceled before every subscription was
// attempted.
type JobService interface {
	RunDailyBatch(ctx context.Context) (*BatchSummary, error)
	RunBatchFor(ctx context.Context, f Filter) (*BatchSummary, error)
	Eligible(ctx context.Context, f Filter) ([]*storage.Subscription, error)
	SendOne(ctx context.Context, id int64, mode notification.Mode) SendResult
	SendPreview(ctx context.Context, email, regionCode string) SendResult
	CleanupOldLogs(ctx context.Context, retentionDays int) (*CleanupSummary, error)
	ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error)
	Ping(ctx context.Context) string
}

type jobService struct {
	subs       storage.SubscriptionStore
	logs       storage.NotificationStore
	dispatcher Dispatcher
	runner     BatchRunner
	logger     *slog.Logger
	now        func() time.Time
}

// NewJobService returns a new JobService.
func NewJobService(
	subs storage.SubscriptionStore,
	logs storage.NotificationStore,
	dispatcher Dispatcher,
	runner BatchRunner,
	logger *slog.Logger,
) JobService {
	return &jobService{
		subs:       subs,
		logs:       logs,
		dispatcher: dispatcher,
		runner:     runner,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *jobService) RunDailyBatch(ctx context.Context) (*BatchSummary, error) {
	return s.RunBatchFor(ctx, Filter{})
}

func (s *jobService) RunBatchFor(ctx context.Context, f Filter) (*BatchSummary, error) {
	subs, err := s.Eligible(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		s.logger.Info("no active subscriptions, nothing to send")
		return &BatchSummary{Message: "no active subscriptions"}, nil
	}

	s.logger.Info("running weather batch", "subscriptions", len(subs))
	result := s.runner.RunBatch(ctx, subs)
	if result.Interrupted() {
		msg := fmt.Sprintf("weather batch interrupted: success %d, failure %d, not attempted %d",
			result.Success, result.Failure, result.Unattempted)
		s.logger.Warn(msg)
		return &BatchSummary{BatchResult: result, Message: msg},
			fmt.Errorf("%w: %d subscriptions not attempted", ErrBatchInterrupted, result.Unattempted)
	}
	msg := fmt.Sprintf("sent daily weather emails: success %d, failure %d", result.Success, result.Failure)
	s.logger.Info(msg)
	return &BatchSummary{BatchResult: result, Message: msg}, nil
}

func (s *jobService) Eligible(ctx context.Context, f Filter) ([]*storage.Subscription, error) {
	if f.SubscriptionID > 0 {
		sub, err := s.subs.GetSubscription(ctx, f.SubscriptionID)
		if err != nil {
			return nil, fmt.Errorf("loading subscription %d: %w", f.SubscriptionID, err)
		}
		if sub == nil || !sub.Active {
			return []*storage.Subscription{}, nil
		}
		return []*storage.Subscription{sub}, nil
	}

	active, err := s.subs.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active subscriptions: %w", err)
	}
	if f.UserID == 0 {
		return active, nil
	}
	out := make([]*storage.Subscription, 0, len(active))
	for _, sub := range active {
		if sub.UserID == f.UserID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *jobService) SendOne(ctx context.Context, id int64, mode notification.Mode) SendResult {
	sub, err := s.subs.GetSubscription(ctx, id)
	if err != nil {
		s.logger.Error("loading subscription failed", "subscription_id", id, "error", err)
		return SendResult{Message: fmt.Sprintf("subscription %d could not be loaded: %v", id, err)}
	}
	if sub == nil || !sub.Active {
		msg := fmt.Sprintf("subscription %d does not exist or is inactive", id)
		s.logger.Warn(msg)
		return SendResult{Message: msg}
	}

	label := "weather email"
	if mode == notification.ModeTest {
		label = "test weather email"
	}

	out := s.dispatcher.Dispatch(ctx, sub, mode)
	if !out.Success {
		return SendResult{Message: fmt.Sprintf("subscription %d: %s failed: %v", id, label, out.Err)}
	}
	return SendResult{Success: true, Message: fmt.Sprintf("subscription %d: %s sent to %s", id, label, sub.Email)}
}

func (s *jobService) SendPreview(ctx context.Context, email, regionCode string) SendResult {
	if _, err := mail.ParseAddress(email); err != nil {
		return SendResult{Message: (&ValidationError{Field: "email", Message: err.Error()}).Error()}
	}
	if regionCode == "" {
		return SendResult{Message: (&ValidationError{Field: "region", Message: "region code is required"}).Error()}
	}
	if err := s.dispatcher.Preview(ctx, email, regionCode); err != nil {
		return SendResult{Message: fmt.Sprintf("test email to %s failed: %v", email, err)}
	}
	return SendResult{Success: true, Message: fmt.Sprintf("test email sent to %s", email)}
}

func (s *jobService) CleanupOldLogs(ctx context.Context, retentionDays int) (*CleanupSummary, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)

	deleted, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("deleting notification log entries before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	msg := fmt.Sprintf("removed %d notification log entries older than %d days", deleted, retentionDays)
	s.logger.Info(msg, "cutoff", cutoff)
	return &CleanupSummary{Deleted: deleted, Cutoff: cutoff, Message: msg}, nil
}

func (s *jobService) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	if limit < 0 {
		return nil, &ValidationError{Field: "limit", Message: "must not be negative"}
	}
	entries, err := s.logs.ListNotifications(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notification log: %w", err)
	}
	return entries, nil
}

func (s *jobService) Ping(_ context.Context) string {
	msg := fmt.Sprintf("scheduler ping ok at %s", s.now().Format("2006-01-02 15:04:05"))
	s.logger.Info(msg)
	return msg
}
