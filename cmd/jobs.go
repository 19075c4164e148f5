package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/weatherbrief/internal/config"
	"github.com/shaharia-lab/weatherbrief/internal/logger"
	"github.com/shaharia-lab/weatherbrief/internal/notification"
	"github.com/shaharia-lab/weatherbrief/internal/service"
)

// NewJobsCmd returns the "jobs" command group for running jobs once from the
// shell, outside the scheduler.
func NewJobsCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run a scheduled job once",
	}

	cmd.AddCommand(newDailyCmd(cfg))
	cmd.AddCommand(newSendCmd(cfg))
	cmd.AddCommand(newCleanupCmd(cfg))
	cmd.AddCommand(newPingCmd(cfg))
	cmd.AddCommand(newTestEmailCmd(cfg))
	return cmd
}

func newDailyCmd(cfg *config.AppConfig) *cobra.Command {
	var filter service.Filter
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Send today's weather email to active subscriptions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cfg, func(ctx context.Context, a *app) error {
				w := cmd.OutOrStdout()

				if dryRun {
					subs, err := a.jobs.Eligible(ctx, filter)
					if err != nil {
						return err
					}
					fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d subscription(s) would be sent", len(subs))))
					for _, s := range subs {
						fmt.Fprintf(w, "  #%d  %s  %s\n", s.ID, s.Email, mutedStyle.Render(s.RegionCode))
					}
					return nil
				}

				summary, err := a.jobs.RunBatchFor(ctx, filter)
				if err != nil {
					if summary != nil {
						printResult(w, false, summary.Message)
					}
					return err
				}
				printResult(w, summary.Failure == 0, summary.Message)
				if summary.Skipped > 0 {
					fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("skipped %d", summary.Skipped)))
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&filter.UserID, "user-id", 0, "Only send to this user's subscriptions")
	cmd.Flags().Int64Var(&filter.SubscriptionID, "subscription-id", 0, "Only send this subscription (overrides --user-id)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the subscriptions that would be sent without sending")
	return cmd
}

func newSendCmd(cfg *config.AppConfig) *cobra.Command {
	var id int64
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one subscription's weather email now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := notification.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			return withApp(cfg, func(ctx context.Context, a *app) error {
				return reportSend(cmd.OutOrStdout(), a.jobs.SendOne(ctx, id, mode))
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Subscription ID")
	cmd.Flags().StringVar(&modeFlag, "mode", string(notification.ModeNormal), "Delivery mode: normal or test")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newCleanupCmd(cfg *config.AppConfig) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old notification log entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cfg, func(ctx context.Context, a *app) error {
				summary, err := a.jobs.CleanupOldLogs(ctx, days)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), true, summary.Message)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "retention-days", cfg.LogRetentionDays, "Keep entries newer than this many days")
	return cmd
}

func newPingCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the job pipeline can start",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cfg, func(ctx context.Context, a *app) error {
				printResult(cmd.OutOrStdout(), true, a.jobs.Ping(ctx))
				return nil
			})
		},
	}
}

func newTestEmailCmd(cfg *config.AppConfig) *cobra.Command {
	var to, region string

	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send a test-mode weather email for a region to any address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cfg, func(ctx context.Context, a *app) error {
				return reportSend(cmd.OutOrStdout(), a.jobs.SendPreview(ctx, to, region))
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient email address")
	cmd.Flags().StringVar(&region, "region", "", "Region adcode, e.g. 110101")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

// withApp builds the dependency graph with a console logger, runs fn and
// closes the database.
func withApp(cfg *config.AppConfig, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(cfg, logger.NewConsoleLogger(os.Stderr, cfg.SlogLevel()))
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	return fn(ctx, a)
}

// reportSend prints a send result and turns a failure into a non-zero exit.
func reportSend(w io.Writer, res service.SendResult) error {
	printResult(w, res.Success, res.Message)
	if !res.Success {
		return errSilentFailure
	}
	return nil
}
