package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// MockWeatherService is a mock implementation of service.WeatherService.
type MockWeatherService struct {
	mock.Mock
}

//nolint:revive
func (m *MockWeatherService) LatestSnapshot(ctx context.Context, regionCode string) (*storage.WeatherSnapshot, error) {
	args := m.Called(ctx, regionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.WeatherSnapshot), args.Error(1)
}
