package service

// Job event types carried on the in-process job bus.
const (
	EventDailyBatch  = "jobs.daily_batch"
	EventSendOne     = "jobs.send_one"
	EventCleanupLogs = "jobs.cleanup_logs"
	EventPing        = "jobs.ping"
)

// EventPublisher is the interface for publishing application events.
// The API uses it to enqueue jobs without depending on a concrete bus.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}
