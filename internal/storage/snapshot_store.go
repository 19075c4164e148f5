package storage

import (
	"context"
	"time"
)

// ForecastCast is one day of a region forecast.
type ForecastCast struct {
	Date         string `json:"date"`
	Week         string `json:"week"`
	DayWeather   string `json:"dayweather"`
	NightWeather string `json:"nightweather"`
	DayTemp      string `json:"daytemp"`
	NightTemp    string `json:"nighttemp"`
	DayWind      string `json:"daywind"`
	NightWind    string `json:"nightwind"`
	DayPower     string `json:"daypower"`
	NightPower   string `json:"nightpower"`
}

// WeatherSnapshot is one fetched observation for a region plus its forecast.
// Snapshots are immutable once saved.
type WeatherSnapshot struct {
	ID            int64          `json:"id"`
	RegionCode    string         `json:"region_code"`
	RegionName    string         `json:"region_name"`
	Weather       string         `json:"weather"`
	Temperature   string         `json:"temperature"`
	WindDirection string         `json:"wind_direction"`
	WindPower     string         `json:"wind_power"`
	Humidity      string         `json:"humidity"`
	ReportTime    string         `json:"report_time"`
	Forecast      []ForecastCast `json:"forecast"`
	CreatedAt     time.Time      `json:"created_at"`
}

// SnapshotStore persists weather snapshots.
type SnapshotStore interface {
	// SaveSnapshot inserts a new snapshot and sets its ID and CreatedAt.
	SaveSnapshot(ctx context.Context, snap *WeatherSnapshot) error
	// LatestSnapshot returns the most recent snapshot for a region, or nil if none exists.
	// RegionName is not persisted and is left empty.
	LatestSnapshot(ctx context.Context, regionCode string) (*WeatherSnapshot, error)
}
