package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// MockRegionStore is a mock implementation of storage.RegionStore.
type MockRegionStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockRegionStore) GetRegion(ctx context.Context, code string) (*storage.Region, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Region), args.Error(1)
}

//nolint:revive
func (m *MockRegionStore) FullName(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

//nolint:revive
func (m *MockRegionStore) SaveRegion(ctx context.Context, region *storage.Region) error {
	args := m.Called(ctx, region)
	return args.Error(0)
}
