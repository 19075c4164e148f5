package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/weatherbrief/internal/api"
	"github.com/shaharia-lab/weatherbrief/internal/build"
	"github.com/shaharia-lab/weatherbrief/internal/config"
	"github.com/shaharia-lab/weatherbrief/internal/eventbus"
	"github.com/shaharia-lab/weatherbrief/internal/lock"
	"github.com/shaharia-lab/weatherbrief/internal/logger"
	"github.com/shaharia-lab/weatherbrief/internal/metrics"
	"github.com/shaharia-lab/weatherbrief/internal/scheduler"
	"github.com/shaharia-lab/weatherbrief/internal/server"
	"github.com/shaharia-lab/weatherbrief/internal/service"
	"github.com/shaharia-lab/weatherbrief/internal/telemetry"
)

const redisLockPrefix = "weatherbrief:lock:"

// NewServeCmd returns the "serve" subcommand that runs the scheduler and the
// HTTP API until interrupted.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the job scheduler and HTTP API",
		Long: `Run the recurring jobs (daily batch, log cleanup, optional ping) on their
cron schedules and serve the HTTP API for manual triggers, health and metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			logFile := filepath.Join(cfg.LogDir(), "system.log")
			printBanner(cmd, cfg, logFile)

			if err := runServe(cfg); err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
				fmt.Fprintf(os.Stderr, "Please check the logs at: %s\n", logFile)
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT env var)")
	return cmd
}

func runServe(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sysLogger, logCloser, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logCloser.Close() //nolint:errcheck

	sysLogger.Info("weatherbrief starting",
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
		slog.String("timezone", cfg.Timezone),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.String("build_date", build.BuildDate),
	)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, build.Version, sysLogger)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			sysLogger.Warn("flushing traces failed", "error", err)
		}
	}()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	schedule, err := config.LoadSchedule(cfg.ScheduleFile())
	if err != nil {
		return err
	}

	a, err := newApp(cfg, sysLogger)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	locker, closeLocker, err := newLocker(ctx, cfg, sysLogger)
	if err != nil {
		return err
	}
	defer closeLocker()

	bus := eventbus.New(1, sysLogger)
	defer bus.Close()
	service.RegisterJobHandlers(ctx, bus, a.jobs, sysLogger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sched, err := scheduler.New(scheduler.Config{
		Jobs:           a.jobs,
		Schedule:       schedule,
		Location:       loc,
		Locker:         locker,
		RetentionDays:  cfg.LogRetentionDays,
		Logger:         sysLogger,
		MaxConcurrency: cfg.SchedulerMaxConcurrency,
	})
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			sysLogger.Warn("stopping scheduler failed", "error", err)
		}
	}()

	apiSrv := api.New(a.jobs, a.weatherSvc, bus, sched, sysLogger)
	srv := server.New(apiSrv, server.Options{
		Port:           cfg.Port,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        metrics.Handler(),
	}, sysLogger)

	sysLogger.Info("server ready", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	return srv.Run(ctx)
}

// newLocker returns a Redis-backed lock when REDIS_ADDR is set and a no-op
// lock otherwise. An unreachable Redis is a startup error.
func newLocker(ctx context.Context, cfg *config.AppConfig, sysLogger *slog.Logger) (lock.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		return lock.Noop{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	l := lock.NewRedis(client, redisLockPrefix)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := l.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}

	sysLogger.Info("daily batch lock enabled", "redis", cfg.RedisAddr)
	return l, func() { _ = client.Close() }, nil
}

// printBanner writes the startup banner to stdout. It is the only output
// visible in the terminal during normal operation; all structured logs go
// to the log file instead.
func printBanner(cmd *cobra.Command, cfg *config.AppConfig, logFile string) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, titleStyle.Render("weatherbrief "+build.Version))
	printField(w, "API", fmt.Sprintf("http://localhost:%d/api", cfg.Port))
	printField(w, "Metrics", fmt.Sprintf("http://localhost:%d/metrics", cfg.Port))
	printField(w, "Timezone", cfg.Timezone)
	printField(w, "Logs", logFile)
	fmt.Fprintln(w)
}
