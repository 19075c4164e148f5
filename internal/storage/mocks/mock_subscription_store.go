package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// MockSubscriptionStore is a mock implementation of storage.SubscriptionStore.
type MockSubscriptionStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockSubscriptionStore) ListActive(ctx context.Context) ([]*storage.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.Subscription), args.Error(1)
}

//nolint:revive
func (m *MockSubscriptionStore) GetSubscription(ctx context.Context, id int64) (*storage.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Subscription), args.Error(1)
}

//nolint:revive
func (m *MockSubscriptionStore) CreateSubscription(ctx context.Context, sub *storage.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

//nolint:revive
func (m *MockSubscriptionStore) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}
