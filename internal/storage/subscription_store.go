package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateSubscription is returned when a user already subscribes to a region.
var ErrDuplicateSubscription = errors.New("subscription already exists for user and region")

// Subscription links a user and a region to a recipient address. Only active
// subscriptions are eligible for delivery.
type Subscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	RegionCode string    `json:"region_code"`
	Email      string    `json:"email"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SubscriptionStore provides access to subscriptions. The delivery pipeline
// only reads them; CreateSubscription and SetActive serve the user-facing
// side and fixtures.
type SubscriptionStore interface {
	// ListActive returns active subscriptions, newest first.
	ListActive(ctx context.Context) ([]*Subscription, error)
	// GetSubscription returns the subscription with the given ID, or nil if not found.
	GetSubscription(ctx context.Context, id int64) (*Subscription, error)
	// CreateSubscription inserts a subscription and sets its ID.
	// Returns ErrDuplicateSubscription on a (user, region) conflict.
	CreateSubscription(ctx context.Context, sub *Subscription) error
	// SetActive toggles the active flag.
	SetActive(ctx context.Context, id int64, active bool) error
}
