package service

import (
	"context"
	"fmt"

	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// SnapshotReader reads stored weather snapshots.
type SnapshotReader interface {
	Latest(ctx context.Context, regionCode string) (*storage.WeatherSnapshot, error)
}

// WeatherService exposes stored weather to the API and CLI.
type WeatherService interface {
	// LatestSnapshot returns the newest snapshot for a region. It returns a
	// *NotFoundError when the region has never been fetched.
	LatestSnapshot(ctx context.Context, regionCode string) (*storage.WeatherSnapshot, error)
}

type weatherService struct {
	reader SnapshotReader
}

// NewWeatherService returns a WeatherService backed by reader.
func NewWeatherService(reader SnapshotReader) WeatherService {
	return &weatherService{reader: reader}
}

func (s *weatherService) LatestSnapshot(ctx context.Context, regionCode string) (*storage.WeatherSnapshot, error) {
	if regionCode == "" {
		return nil, &ValidationError{Field: "region", Message: "region code is required"}
	}
	snap, err := s.reader.Latest(ctx, regionCode)
	if err != nil {
		return nil, fmt.Errorf("reading weather for %s: %w", regionCode, err)
	}
	if snap == nil {
		return nil, &NotFoundError{Resource: "weather snapshot", ID: regionCode}
	}
	return snap, nil
}
