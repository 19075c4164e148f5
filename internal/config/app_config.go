package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // Asia/Shanghai must resolve in minimal images.

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8990.
	Port int `envconfig:"PORT" default:"8990"`

	// DataDir is the root data directory. Defaults to ~/.weatherbrief.
	DataDir string `envconfig:"WEATHERBRIEF_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	WeatherAPIKey     string        `envconfig:"WEATHER_API_KEY"`
	WeatherAPIURL     string        `envconfig:"WEATHER_API_URL" default:"https://restapi.amap.com/v3/weather/weatherInfo"`
	WeatherAPITimeout time.Duration `envconfig:"WEATHER_API_TIMEOUT" default:"10s"`

	SMTPHost       string `envconfig:"SMTP_HOST"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername   string `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom       string `envconfig:"SMTP_FROM"`
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"starttls"`

	// SiteURL is linked from every weather report.
	SiteURL string `envconfig:"SITE_URL" default:"http://localhost:8000"`

	// Timezone is used for cron schedules and report date stamps.
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Shanghai"`

	LogRetentionDays int `envconfig:"LOG_RETENTION_DAYS" default:"30"`

	// RedisAddr enables the cross-replica daily batch lock when set.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// OTLPEndpoint enables trace export over OTLP/gRPC when set.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	SchedulerMaxConcurrency int `envconfig:"SCHEDULER_MAX_CONCURRENCY" default:"2"`

	// CORSAllowedOrigins lists origins allowed to call the HTTP API.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:8000"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.weatherbrief if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".weatherbrief")
	}
	if _, err := c.Location(); err != nil {
		return nil, err
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location resolves Timezone. An empty value means UTC.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LogDir returns the path to the log directory (~/.weatherbrief/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBFile returns the path to the SQLite database.
func (c *AppConfig) DBFile() string {
	return filepath.Join(c.DataDir, "weatherbrief.db")
}

// ScheduleFile returns the path to the optional schedule overrides file.
func (c *AppConfig) ScheduleFile() string {
	return filepath.Join(c.DataDir, "schedule.yaml")
}
