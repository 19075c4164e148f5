package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLiteSnapshotStore implements SnapshotStore backed by SQLite.
type SQLiteSnapshotStore struct {
	db *sql.DB
}

// NewSQLiteSnapshotStore returns a new SQLiteSnapshotStore.
func NewSQLiteSnapshotStore(db *sql.DB) *SQLiteSnapshotStore {
	return &SQLiteSnapshotStore{db: db}
}

// SaveSnapshot inserts a snapshot. The forecast is stored as a JSON array.
func (s *SQLiteSnapshotStore) SaveSnapshot(ctx context.Context, snap *WeatherSnapshot) error {
	forecast := snap.Forecast
	if forecast == nil {
		forecast = []ForecastCast{}
	}
	forecastJSON, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("marshaling forecast: %w", err)
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO weather_snapshots
			(region_code, weather, temperature, wind_direction, wind_power,
			 humidity, report_time, forecast, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.RegionCode, snap.Weather, snap.Temperature, snap.WindDirection,
		snap.WindPower, snap.Humidity, snap.ReportTime, string(forecastJSON),
		snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting weather snapshot for %q: %w", snap.RegionCode, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading snapshot id: %w", err)
	}
	snap.ID = id
	return nil
}

// LatestSnapshot returns the newest snapshot for a region, or nil if none exists.
func (s *SQLiteSnapshotStore) LatestSnapshot(ctx context.Context, regionCode string) (*WeatherSnapshot, error) {
	snap := &WeatherSnapshot{}
	var forecastJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, region_code, weather, temperature, wind_direction, wind_power,
		       humidity, report_time, forecast, created_at
		FROM weather_snapshots
		WHERE region_code = ?
		ORDER BY id DESC
		LIMIT 1`, regionCode,
	).Scan(&snap.ID, &snap.RegionCode, &snap.Weather, &snap.Temperature,
		&snap.WindDirection, &snap.WindPower, &snap.Humidity, &snap.ReportTime,
		&forecastJSON, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest snapshot for %q: %w", regionCode, err)
	}
	if err := json.Unmarshal([]byte(forecastJSON), &snap.Forecast); err != nil {
		return nil, fmt.Errorf("unmarshaling forecast for snapshot %d: %w", snap.ID, err)
	}
	return snap, nil
}
