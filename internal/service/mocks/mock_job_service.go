package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/weatherbrief/internal/notification"
	"github.com/shaharia-lab/weatherbrief/internal/service"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// MockJobService is a mock implementation of service.JobService.
type MockJobService struct {
	mock.Mock
}

//nolint:revive
func (m *MockJobService) RunDailyBatch(ctx context.Context) (*service.BatchSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchSummary), args.Error(1)
}

//nolint:revive
func (m *MockJobService) RunBatchFor(ctx context.Context, f service.Filter) (*service.BatchSummary, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchSummary), args.Error(1)
}

//nolint:revive
func (m *MockJobService) Eligible(ctx context.Context, f service.Filter) ([]*storage.Subscription, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.Subscription), args.Error(1)
}

//nolint:revive
func (m *MockJobService) SendOne(ctx context.Context, id int64, mode notification.Mode) service.SendResult {
	args := m.Called(ctx, id, mode)
	return args.Get(0).(service.SendResult)
}

//nolint:revive
func (m *MockJobService) SendPreview(ctx context.Context, email, regionCode string) service.SendResult {
	args := m.Called(ctx, email, regionCode)
	return args.Get(0).(service.SendResult)
}

//nolint:revive
func (m *MockJobService) CleanupOldLogs(ctx context.Context, retentionDays int) (*service.CleanupSummary, error) {
	args := m.Called(ctx, retentionDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CleanupSummary), args.Error(1)
}

//nolint:revive
func (m *MockJobService) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.NotificationLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockJobService) Ping(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}
