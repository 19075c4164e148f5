package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shaharia-lab/weatherbrief/internal/eventbus"
	"github.com/shaharia-lab/weatherbrief/internal/notification"
)

// JobRegistrar is the part of the event bus used to register job listeners.
type JobRegistrar interface {
	Handle(eventType string, listener eventbus.Listener)
}

// RegisterJobHandlers wires the job events onto jobs so that queued work
// published by the API runs in the background.
func RegisterJobHandlers(ctx context.Context, bus JobRegistrar, jobs JobService, logger *slog.Logger) {
	bus.Handle(EventDailyBatch, func(e eventbus.Event) {
		summary, err := jobs.RunDailyBatch(ctx)
		if err != nil {
			logger.Error("queued daily batch failed", "event_id", e.ID, "error", err)
			return
		}
		logger.Info("queued daily batch finished", "event_id", e.ID, "message", summary.Message)
	})

	bus.Handle(EventSendOne, func(e eventbus.Event) {
		id, err := strconv.ParseInt(e.Payload["subscription_id"], 10, 64)
		if err != nil {
			logger.Error("queued send has invalid subscription id", "event_id", e.ID, "value", e.Payload["subscription_id"])
			return
		}
		mode, err := notification.ParseMode(e.Payload["mode"])
		if err != nil {
			logger.Error("queued send has invalid mode", "event_id", e.ID, "error", err)
			return
		}
		res := jobs.SendOne(ctx, id, mode)
		logger.Info("queued send finished", "event_id", e.ID, "success", res.Success, "message", res.Message)
	})

	bus.Handle(EventCleanupLogs, func(e eventbus.Event) {
		days, _ := strconv.Atoi(e.Payload["retention_days"])
		summary, err := jobs.CleanupOldLogs(ctx, days)
		if err != nil {
			logger.Error("queued cleanup failed", "event_id", e.ID, "error", err)
			return
		}
		logger.Info("queued cleanup finished", "event_id", e.ID, "deleted", summary.Deleted)
	})

	bus.Handle(EventPing, func(e eventbus.Event) {
		logger.Info("queued ping finished", "event_id", e.ID, "message", jobs.Ping(ctx))
	})
}
