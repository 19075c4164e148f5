package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// MockSnapshotStore is a mock implementation of storage.SnapshotStore.
type MockSnapshotStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockSnapshotStore) SaveSnapshot(ctx context.Context, snap *storage.WeatherSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

//nolint:revive
func (m *MockSnapshotStore) LatestSnapshot(ctx context.Context, regionCode string) (*storage.WeatherSnapshot, error) {
	args := m.Called(ctx, regionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.WeatherSnapshot), args.Error(1)
}
