package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shaharia-lab/weatherbrief/internal/config"
	"github.com/shaharia-lab/weatherbrief/internal/notification"
	"github.com/shaharia-lab/weatherbrief/internal/service"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
	"github.com/shaharia-lab/weatherbrief/internal/weather"
)

// app is the dependency graph shared by serve and the one-shot job commands.
type app struct {
	db         *sql.DB
	jobs       service.JobService
	weatherSvc service.WeatherService
}

func newApp(cfg *config.AppConfig, logger *slog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, fresh, err := storage.NewSQLiteDB(cfg.DBFile())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if fresh {
		logger.Info("created new database", "path", cfg.DBFile())
	}

	regions := storage.NewSQLiteRegionStore(db)
	subs := storage.NewSQLiteSubscriptionStore(db)
	snapshots := storage.NewSQLiteSnapshotStore(db)
	logs := storage.NewSQLiteNotificationStore(db)

	if cfg.WeatherAPIKey == "" {
		logger.Warn("WEATHER_API_KEY is not set; weather fetches will be rejected")
	}
	client := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey, cfg.WeatherAPITimeout)
	weatherStore := weather.NewService(client, regions, snapshots, logger)

	smtpCfg := smtpConfig(cfg)
	if err := smtpCfg.Validate(); err != nil {
		logger.Warn("smtp is not fully configured; sends will fail", "error", err)
	}

	formatter := notification.NewFormatter(cfg.SiteURL, loc)
	dispatcher := notification.NewDispatcher(weatherStore, formatter,
		notification.NewSMTPProvider(smtpCfg), logs, logger)
	runner := notification.NewBatchRunner(dispatcher, logger)

	return &app{
		db:         db,
		jobs:       service.NewJobService(subs, logs, dispatcher, runner, logger),
		weatherSvc: service.NewWeatherService(weatherStore),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func smtpConfig(cfg *config.AppConfig) notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		FromAddr:   cfg.SMTPFrom,
		Encryption: cfg.SMTPEncryption,
	}
}
