package weather_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/weatherbrief/internal/storage"
	"github.com/shaharia-lab/weatherbrief/internal/storage/mocks"
	"github.com/shaharia-lab/weatherbrief/internal/weather"
)

type stubFetcher struct {
	live        *weather.Live
	liveErr     error
	forecast    []storage.ForecastCast
	forecastErr error
	calls       int
}

func (f *stubFetcher) FetchCurrent(_ context.Context, _ string) (*weather.Live, error) {
	f.calls++
	return f.live, f.liveErr
}

func (f *stubFetcher) FetchForecast(_ context.Context, _ string) ([]storage.ForecastCast, error) {
	f.calls++
	return f.forecast, f.forecastErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var dongcheng = &storage.Region{Code: "110101", Name: "东城区", ParentCode: "110000", Level: 3}

func TestService_FetchAndPersist(t *testing.T) {
	regions := &mocks.MockRegionStore{}
	snapshots := &mocks.MockSnapshotStore{}
	fetcher := &stubFetcher{
		live:     &weather.Live{Weather: "晴", Temperature: "25", WindDirection: "南", WindPower: "≤3", Humidity: "40", ReportTime: "2026-10-16 08:00:00"},
		forecast: []storage.ForecastCast{{Date: "2026-10-16"}, {Date: "2026-10-17"}},
	}

	regions.On("GetRegion", mock.Anything, "110101").Return(dongcheng, nil)
	regions.On("FullName", mock.Anything, "110101").Return("北京市 东城区", nil)
	snapshots.On("SaveSnapshot", mock.Anything, mock.AnythingOfType("*storage.WeatherSnapshot")).Return(nil)

	svc := weather.NewService(fetcher, regions, snapshots, discardLogger())
	snap, err := svc.FetchAndPersist(context.Background(), "110101")
	require.NoError(t, err)

	assert.Equal(t, "北京市 东城区", snap.RegionName)
	assert.Equal(t, "晴", snap.Weather)
	assert.Equal(t, "25", snap.Temperature)
	assert.Len(t, snap.Forecast, 2)
	snapshots.AssertNumberOfCalls(t, "SaveSnapshot", 1)
}

func TestService_FetchAndPersist_UnknownRegion(t *testing.T) {
	regions := &mocks.MockRegionStore{}
	snapshots := &mocks.MockSnapshotStore{}
	fetcher := &stubFetcher{}

	regions.On("GetRegion", mock.Anything, "999999").Return(nil, nil)

	svc := weather.NewService(fetcher, regions, snapshots, discardLogger())
	_, err := svc.FetchAndPersist(context.Background(), "999999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, weather.ErrRegionNotFound))
	assert.Contains(t, err.Error(), "999999")
	assert.Zero(t, fetcher.calls)
	snapshots.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything)
}

func TestService_FetchAndPersist_CurrentFails(t *testing.T) {
	regions := &mocks.MockRegionStore{}
	snapshots := &mocks.MockSnapshotStore{}
	fetcher := &stubFetcher{liveErr: &weather.FetchError{Kind: weather.KindAPIStatus, RegionCode: "110101"}}

	regions.On("GetRegion", mock.Anything, "110101").Return(dongcheng, nil)

	svc := weather.NewService(fetcher, regions, snapshots, discardLogger())
	_, err := svc.FetchAndPersist(context.Background(), "110101")
	require.Error(t, err)
	assert.True(t, errors.Is(err, weather.ErrFetchFailed))
	snapshots.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything)
}

func TestService_FetchAndPersist_ForecastFailureTolerated(t *testing.T) {
	regions := &mocks.MockRegionStore{}
	snapshots := &mocks.MockSnapshotStore{}
	fetcher := &stubFetcher{
		live:        &weather.Live{Weather: "阴", Temperature: "18"},
		forecastErr: &weather.FetchError{Kind: weather.KindTransport, RegionCode: "110101"},
	}

	regions.On("GetRegion", mock.Anything, "110101").Return(dongcheng, nil)
	regions.On("FullName", mock.Anything, "110101").Return("北京市 东城区", nil)
	snapshots.On("SaveSnapshot", mock.Anything, mock.Anything).Return(nil)

	svc := weather.NewService(fetcher, regions, snapshots, discardLogger())
	snap, err := svc.FetchAndPersist(context.Background(), "110101")
	require.NoError(t, err)
	assert.NotNil(t, snap.Forecast)
	assert.Empty(t, snap.Forecast)
}

func TestService_FetchAndPersist_SaveFails(t *testing.T) {
	regions := &mocks.MockRegionStore{}
	snapshots := &mocks.MockSnapshotStore{}
	fetcher := &stubFetcher{live: &weather.Live{Weather: "晴"}}

	regions.On("GetRegion", mock.Anything, "110101").Return(dongcheng, nil)
	regions.On("FullName", mock.Anything, "110101").Return("北京市 东城区", nil)
	snapshots.On("SaveSnapshot", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := weather.NewService(fetcher, regions, snapshots, discardLogger())
	_, err := svc.FetchAndPersist(context.Background(), "110101")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_Latest(t *testing.T) {
	regions := &mocks.MockRegionStore{}
	snapshots := &mocks.MockSnapshotStore{}

	snapshots.On("LatestSnapshot", mock.Anything, "110101").Return(&storage.WeatherSnapshot{ID: 3, RegionCode: "110101"}, nil)
	snapshots.On("LatestSnapshot", mock.Anything, "310000").Return(nil, nil)
	regions.On("FullName", mock.Anything, "110101").Return("北京市 东城区", nil)

	svc := weather.NewService(&stubFetcher{}, regions, snapshots, discardLogger())

	snap, err := svc.Latest(context.Background(), "110101")
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.ID)
	assert.Equal(t, "北京市 东城区", snap.RegionName)

	none, err := svc.Latest(context.Background(), "310000")
	require.NoError(t, err)
	assert.Nil(t, none)
}
