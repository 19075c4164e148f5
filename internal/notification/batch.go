package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/weatherbrief/internal/metrics"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// SubscriptionDispatcher delivers a report to one subscription.
type SubscriptionDispatcher interface {
	Dispatch(ctx context.Context, sub *storage.Subscription, mode Mode) Outcome
}

// BatchResult counts the outcomes of one batch run.
// Success+Failure+Skipped+Unattempted always equals the number of inputs.
type BatchResult struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Skipped int `json:"skipped"`
	// Unattempted counts subscriptions left untouched because the context
	// was canceled before their turn.
	Unattempted int `json:"unattempted,omitempty"`
}

// Total returns the number of subscriptions the batch saw.
func (r BatchResult) Total() int { return r.Success + r.Failure + r.Skipped + r.Unattempted }

// Interrupted reports whether the batch stopped before reaching every subscription.
func (r BatchResult) Interrupted() bool { return r.Unattempted > 0 }

// BatchRunner dispatches to a list of subscriptions one at a time.
type BatchRunner struct {
	dispatcher SubscriptionDispatcher
	logger     *slog.Logger
}

// NewBatchRunner returns a BatchRunner.
func NewBatchRunner(d SubscriptionDispatcher, logger *slog.Logger) *BatchRunner {
	return &BatchRunner{dispatcher: d, logger: logger}
}

// RunBatch dispatches in normal mode to every active subscription, in order.
// Inactive subscriptions are skipped. One subscription's failure, including a
// panic, never stops the rest of the batch. Cancellation is checked between
// subscriptions: once ctx is done the remaining ones are counted as
// Unattempted and get no log entry.
func (r *BatchRunner) RunBatch(ctx context.Context, subs []*storage.Subscription) BatchResult {
	var result BatchResult
	if len(subs) == 0 {
		return result
	}

	runID := uuid.NewString()
	logger := r.logger.With("batch_id", runID)
	start := time.Now()
	logger.Info("batch started", "subscriptions", len(subs))

	for i, sub := range subs {
		if ctx.Err() != nil {
			result.Unattempted = len(subs) - i
			logger.Warn("batch interrupted", "unattempted", result.Unattempted, "error", ctx.Err())
			break
		}
		if sub == nil || !sub.Active {
			result.Skipped++
			continue
		}
		if r.dispatchOne(ctx, logger, sub) {
			result.Success++
		} else {
			result.Failure++
		}
	}

	metrics.BatchDuration.Observe(time.Since(start).Seconds())
	logger.Info("batch finished",
		"success", result.Success,
		"failure", result.Failure,
		"skipped", result.Skipped,
		"unattempted", result.Unattempted,
		"duration", time.Since(start).String(),
	)
	return result
}

func (r *BatchRunner) dispatchOne(ctx context.Context, logger *slog.Logger, sub *storage.Subscription) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("dispatch panicked", "subscription_id", sub.ID, "panic", fmt.Sprint(rec))
			ok = false
		}
	}()
	return r.dispatcher.Dispatch(ctx, sub, ModeNormal).Success
}
