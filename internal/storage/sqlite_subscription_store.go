package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLiteSubscriptionStore implements SubscriptionStore backed by SQLite.
type SQLiteSubscriptionStore struct {
	db *sql.DB
}

// NewSQLiteSubscriptionStore returns a new SQLiteSubscriptionStore.
func NewSQLiteSubscriptionStore(db *sql.DB) *SQLiteSubscriptionStore {
	return &SQLiteSubscriptionStore{db: db}
}

const subscriptionColumns = `id, user_id, region_code, email, active, created_at, updated_at`

// ListActive returns active subscriptions ordered by creation time descending.
func (s *SQLiteSubscriptionStore) ListActive(ctx context.Context) ([]*Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE active = 1
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing active subscriptions: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	subs := make([]*Subscription, 0)
	for rows.Next() {
		sub := &Subscription{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.RegionCode, &sub.Email,
			&sub.Active, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscription row: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GetSubscription returns a subscription by ID, or nil if not found.
func (s *SQLiteSubscriptionStore) GetSubscription(ctx context.Context, id int64) (*Subscription, error) {
	sub := &Subscription{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions WHERE id = ?`, id,
	).Scan(&sub.ID, &sub.UserID, &sub.RegionCode, &sub.Email,
		&sub.Active, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting subscription %d: %w", id, err)
	}
	return sub, nil
}

// CreateSubscription inserts a new subscription.
func (s *SQLiteSubscriptionStore) CreateSubscription(ctx context.Context, sub *Subscription) error {
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, region_code, email, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.UserID, sub.RegionCode, sub.Email, sub.Active, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateSubscription
		}
		return fmt.Errorf("creating subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading subscription id: %w", err)
	}
	sub.ID = id
	return nil
}

// SetActive toggles a subscription's active flag.
func (s *SQLiteSubscriptionStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating subscription %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subscription %d not found", id)
	}
	return nil
}
