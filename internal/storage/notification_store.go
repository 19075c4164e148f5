package storage

import (
	"context"
	"time"
)

// NotificationLogEntry records a single notification delivery attempt.
// Entries are append-only; the only deletion path is age-based pruning.
type NotificationLogEntry struct {
	ID             int64     `json:"id"`
	SubscriptionID int64     `json:"subscription_id"`
	Email          string    `json:"email"`
	Subject        string    `json:"subject"`
	Content        string    `json:"content"`
	Mode           string    `json:"mode"`
	Success        bool      `json:"success"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	ErrorMsg       string    `json:"error_msg,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationStore defines the interface for persisting notification delivery logs.
type NotificationStore interface {
	// LogNotification records a notification delivery attempt.
	LogNotification(ctx context.Context, entry NotificationLogEntry) error
	// ListNotifications returns the most recent notification log entries, up to limit.
	ListNotifications(ctx context.Context, limit int) ([]NotificationLogEntry, error)
	// DeleteOlderThan removes entries created before cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
