package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/detent/glctl/internal/logging"
	"github.com/detent/glctl/internal/persistence"
	"github.com/detent/glctl/internal/sentry"
	"github.com/detent/glctl/internal/signal"
	"github.com/detent/glctl/internal/tui"
)

var (
	// Global flags shared across commands
	logLevel  string
	configDir string
)

// globalConfig holds the resolved configuration, available to all commands.
// Initialized in PersistentPreRunE.
var globalConfig *persistence.Config

// logger receives diagnostics on stderr. Initialized in PersistentPreRunE.
var logger = log.New(os.Stderr)

var rootCmd = &cobra.Command{
	Use:   "glctl",
	Short: "Render GitLab CI job logs in the terminal",
	Long: `glctl replays GitLab CI job logs with their section markers folded.

Sections other than the selected step are reduced to a banner, collapsed
sections stay hidden unless --all is given, and ANSI colors are kept or
stripped depending on the output.

Job logs can be read from a file, from stdin, or from the local job store
filled with 'glctl jobs import'.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if configDir != "" {
			if err := os.Setenv(persistence.HomeEnv, configDir); err != nil {
				return fmt.Errorf("set %s: %w", persistence.HomeEnv, err)
			}
		}

		cfg, err := persistence.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n",
				tui.WarningStyle.Render("⚠"),
				tui.MutedStyle.Render(fmt.Sprintf("Config error: %v", err)))
			cfg = persistence.NewConfigWithDefaults()
		}
		for _, w := range cfg.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", tui.WarningStyle.Render("⚠"), tui.MutedStyle.Render(w))
		}
		globalConfig = cfg

		level, err := logging.ParseLevel(logLevel, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logger = logging.New(cmd.ErrOrStderr(), level)

		sentry.SetTag("command", cmd.CommandPath())
		return nil
	},
}

// Execute runs the root command with signal handling.
func Execute() error {
	ctx, stop := signal.SetupSignalHandler(context.Background())
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		signal.PrintCancellationMessage(os.Stderr, rootCmd.Name())
		return err
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", tui.ErrorStyle.Render("✗"), err)
	return err
}

func init() {
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.glctl)")
}
