package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/detent/glctl/internal/ci"
	"github.com/detent/glctl/internal/persistence"
	"github.com/detent/glctl/internal/render"
	"github.com/detent/glctl/internal/sentry"
	"github.com/detent/glctl/internal/style"
	"github.com/detent/glctl/internal/terminal"
	"github.com/detent/glctl/internal/tui"
)

var (
	// Command-specific flags
	logAll    bool
	logStep   string
	logColor  string
	logPager  bool
	logJobID  int64
	logID     int64
	logStatus string
	logURL    string
)

var logCmd = &cobra.Command{
	Use:   "log [FILE|-]",
	Short: "Render a GitLab CI job log",
	Long: `Render a GitLab CI job log with its sections folded.

Only the body of the selected step is printed; every other section is
reduced to a banner ending with '<'. Collapsed sections stay hidden unless
--all is given.

The log is read from FILE, from stdin when FILE is '-' or omitted, or from
the local job store with --job.`,
	Example: `  # Show the script of a saved job log
  glctl log job.log

  # Show everything, collapsed sections included
  glctl log --all job.log

  # Show a custom section from a stored job in a pager
  glctl log --job 1234 --step build_image --pager`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

func init() {
	logCmd.Flags().BoolVarP(&logAll, "all", "a", false, "show all sections, collapsed ones included")
	logCmd.Flags().StringVarP(&logStep, "step", "s", "", "section to show (default from config, step_script)")
	logCmd.Flags().StringVar(&logColor, "color", "", "colorize output: auto, always, never (default from config)")
	logCmd.Flags().BoolVar(&logPager, "pager", false, "browse the rendered log in a pager")
	logCmd.Flags().Int64Var(&logJobID, "job", 0, "render a job from the local store")
	logCmd.Flags().Int64Var(&logID, "id", 0, "job id shown in the header")
	logCmd.Flags().StringVar(&logStatus, "status", "", "job status shown in the header")
	logCmd.Flags().StringVar(&logURL, "url", "", "job url shown in the header")

	logCmd.MarkFlagsMutuallyExclusive("job", "id")
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg := globalConfig
	if cfg == nil {
		cfg = persistence.NewConfigWithDefaults()
	}

	data, job, err := loadLog(cmd, args)
	if err != nil {
		return err
	}

	mode := cfg.Color
	if logColor != "" {
		if mode, err = terminal.ParseColorMode(logColor); err != nil {
			return err
		}
	}
	step := cfg.Step
	if logStep != "" {
		step = logStep
	}
	filter := render.Filter{All: logAll, Step: step}
	colored := outputColored(mode)

	if logPager {
		if !terminal.IsTerminal(os.Stdout) {
			return errors.New("--pager requires an interactive terminal")
		}
		var buf bytes.Buffer
		if err := renderJob(&buf, job, data, filter, colored); err != nil {
			return err
		}
		title := "glctl log"
		if job != nil {
			title = "Log for job " + strconv.FormatInt(job.ID, 10)
		}
		return tui.RunPager(title, buf.String())
	}

	return renderJob(cmd.OutOrStdout(), job, data, filter, colored)
}

// outputColored decides coloring for stdout, which the pager shares.
func outputColored(mode terminal.ColorMode) bool {
	return terminal.Colorize(mode, os.Stdout)
}

func renderJob(w io.Writer, job *ci.Job, data []byte, filter render.Filter, colored bool) error {
	if job != nil {
		if err := style.NewPrinter(w, colored).Print(ci.Header(*job)); err != nil {
			return fmt.Errorf("print header: %w", err)
		}
	}

	logger.Debug("rendering log", "bytes", len(data), "step", filter.Step, "all", filter.All, "colored", colored)
	r := render.New(w, render.Options{
		Filter:  filter,
		Colored: colored,
		Logger:  logger,
	})
	return r.Render(data)
}

// loadLog returns the raw log and, when known, the job it belongs to.
func loadLog(cmd *cobra.Command, args []string) ([]byte, *ci.Job, error) {
	if cmd.Flags().Changed("job") {
		if len(args) > 0 {
			return nil, nil, errors.New("--job cannot be combined with a FILE argument")
		}
		if err := checkJobID(logJobID); err != nil {
			return nil, nil, err
		}
		store, err := openStore()
		if err != nil {
			return nil, nil, err
		}
		defer func() { _ = store.Close() }()

		job, data, err := store.Log(cmd.Context(), logJobID)
		if err != nil {
			return nil, nil, err
		}
		sentry.AddBreadcrumb("log", "rendering stored job")
		return data, &job, nil
	}

	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		// #nosec G304 - path is provided by the user
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, nil, fmt.Errorf("read log: %w", err)
		}
	}

	if !cmd.Flags().Changed("id") {
		return data, nil, nil
	}
	if err := checkJobID(logID); err != nil {
		return nil, nil, err
	}
	status := ci.JobStatus(logStatus)
	if logStatus != "" && !status.Valid() {
		return nil, nil, fmt.Errorf("invalid job status %q", logStatus)
	}
	return data, &ci.Job{ID: logID, Status: status, WebURL: logURL}, nil
}
