// Package cmd implements the weatherbrief command line.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/weatherbrief/internal/config"
)

// Execute loads configuration from the environment and runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := NewRootCmd(cfg).Execute(); err != nil {
		if !errors.Is(err, errSilentFailure) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		}
		os.Exit(1)
	}
}

// errSilentFailure makes a command exit non-zero after it has already
// reported the failure itself.
var errSilentFailure = errors.New("command failed")

// NewRootCmd builds the command tree around cfg.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:   "weatherbrief",
		Short: "Daily weather report emails for region subscribers",
		Long: `weatherbrief fetches live weather and forecasts for subscribed regions,
renders them into HTML and text emails and delivers them on a schedule.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupStyles(noColor)
		},
	}

	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(NewServeCmd(cfg))
	root.AddCommand(NewJobsCmd(cfg))
	root.AddCommand(NewWeatherCmd(cfg))
	root.AddCommand(NewVersionCmd())

	return root
}
