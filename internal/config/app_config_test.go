package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AppConfig{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, c.SlogLevel())
		})
	}
}

func TestAppConfig_DirectoryPaths(t *testing.T) {
	c := &AppConfig{DataDir: "/data"}

	tests := []struct {
		name string
		fn   func() string
		want string
	}{
		{"LogDir", c.LogDir, "/data/logs"},
		{"DBFile", c.DBFile, "/data/weatherbrief.db"},
		{"ScheduleFile", c.ScheduleFile, "/data/schedule.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WEATHERBRIEF_DATA_DIR", "/tmp/test-weatherbrief")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WEATHER_API_KEY", "amap-key")
	t.Setenv("WEATHER_API_TIMEOUT", "3s")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("TIMEZONE", "Asia/Shanghai")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test-weatherbrief", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "amap-key", cfg.WeatherAPIKey)
	assert.Equal(t, 3*time.Second, cfg.WeatherAPITimeout)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)

	// Defaults.
	assert.Equal(t, "https://restapi.amap.com/v3/weather/weatherInfo", cfg.WeatherAPIURL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "starttls", cfg.SMTPEncryption)
	assert.Equal(t, "http://localhost:8000", cfg.SiteURL)
	assert.Equal(t, 30, cfg.LogRetentionDays)
	assert.Equal(t, 2, cfg.SchedulerMaxConcurrency)
	assert.Equal(t, []string{"http://localhost:8000"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.RedisAddr)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())
}

func TestLoad_DefaultDataDir(t *testing.T) {
	t.Setenv("WEATHERBRIEF_DATA_DIR", "")
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.weatherbrief", cfg.DataDir)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("WEATHERBRIEF_DATA_DIR", "/tmp/x")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}
