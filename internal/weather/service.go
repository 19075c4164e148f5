package weather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// Service resolves regions, fetches live weather and stores snapshots.
// Every call fetches fresh data; nothing is cached between calls.
type Service struct {
	fetcher   Fetcher
	regions   storage.RegionStore
	snapshots storage.SnapshotStore
	logger    *slog.Logger
}

// NewService returns a Service.
func NewService(fetcher Fetcher, regions storage.RegionStore, snapshots storage.SnapshotStore, logger *slog.Logger) *Service {
	return &Service{
		fetcher:   fetcher,
		regions:   regions,
		snapshots: snapshots,
		logger:    logger,
	}
}

// FetchAndPersist fetches current weather and forecast for a region and saves
// a new snapshot. A forecast failure degrades to an empty forecast; every
// other failure is returned.
func (s *Service) FetchAndPersist(ctx context.Context, regionCode string) (*storage.WeatherSnapshot, error) {
	region, err := s.regions.GetRegion(ctx, regionCode)
	if err != nil {
		return nil, fmt.Errorf("looking up region %s: %w", regionCode, err)
	}
	if region == nil {
		return nil, fmt.Errorf("region %s: %w", regionCode, ErrRegionNotFound)
	}

	live, err := s.fetcher.FetchCurrent(ctx, regionCode)
	if err != nil {
		return nil, err
	}

	forecast, err := s.fetcher.FetchForecast(ctx, regionCode)
	if err != nil {
		s.logger.Warn("forecast unavailable, continuing without it",
			"region", regionCode, "error", err)
		forecast = []storage.ForecastCast{}
	}

	name, err := s.regions.FullName(ctx, regionCode)
	if err != nil || name == "" {
		name = region.Name
	}

	snap := &storage.WeatherSnapshot{
		RegionCode:    regionCode,
		RegionName:    name,
		Weather:       live.Weather,
		Temperature:   live.Temperature,
		WindDirection: live.WindDirection,
		WindPower:     live.WindPower,
		Humidity:      live.Humidity,
		ReportTime:    live.ReportTime,
		Forecast:      forecast,
	}
	if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving snapshot for %s: %w", regionCode, err)
	}
	return snap, nil
}

// Latest returns the most recently stored snapshot for a region, or nil if
// the region has never been fetched.
func (s *Service) Latest(ctx context.Context, regionCode string) (*storage.WeatherSnapshot, error) {
	snap, err := s.snapshots.LatestSnapshot(ctx, regionCode)
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot for %s: %w", regionCode, err)
	}
	if snap == nil {
		return nil, nil
	}
	if name, nameErr := s.regions.FullName(ctx, regionCode); nameErr == nil {
		snap.RegionName = name
	}
	return snap, nil
}
