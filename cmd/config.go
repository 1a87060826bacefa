package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/detent/glctl/internal/persistence"
	"github.com/detent/glctl/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage glctl configuration",
	Long: `View and manage the glctl configuration (~/.glctl/config.yaml).

Settings:
  color      auto, always or never
  step       section shown by 'glctl log' (default step_script)
  database   path of the local job store
  log_level  diagnostic log level

Environment variables GLCTL_COLOR, GLCTL_STEP and GLCTL_LOG_LEVEL override
the file. GLCTL_HOME moves the configuration directory.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func sourceBadge(source persistence.ValueSource) string {
	return tui.Badge(source.String())
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := persistence.LoadWithSources()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  color      %-20s %s\n", tui.PrimaryStyle.Render(cfg.Color.Value.String()), sourceBadge(cfg.Color.Source))
	fmt.Fprintf(out, "  step       %-20s %s\n", tui.PrimaryStyle.Render(cfg.Step.Value), sourceBadge(cfg.Step.Source))
	fmt.Fprintf(out, "  database   %-20s %s\n", tui.PrimaryStyle.Render(cfg.Database.Value), sourceBadge(cfg.Database.Source))
	fmt.Fprintf(out, "  log_level  %-20s %s\n", tui.PrimaryStyle.Render(cfg.LogLevel.Value.String()), sourceBadge(cfg.LogLevel.Source))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	// reload so a file that failed to parse is never replaced by defaults
	cfg, err := persistence.Load()
	if err != nil {
		return fmt.Errorf("refusing to update unreadable config: %w", err)
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", tui.SuccessStyle.Render("✓"), args[0], args[1])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := persistence.GetConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
