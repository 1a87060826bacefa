package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/detent/glctl/internal/ci"
	"github.com/detent/glctl/internal/persistence"
	"github.com/detent/glctl/internal/sentry"
	"github.com/detent/glctl/internal/style"
	"github.com/detent/glctl/internal/terminal"
	"github.com/detent/glctl/internal/tui"
)

// importConcurrency bounds the number of log files read at once.
const importConcurrency = 4

var (
	importID     int64
	importName   string
	importStage  string
	importStatus string
	importURL    string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage job logs in the local store",
}

var jobsImportCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Store job log files",
	Long: `Store one or more job log files in the local job store.

With several files, job ids are assigned in order starting at --id.
A job already stored under the same id is replaced.`,
	Example: `  glctl jobs import --id 1234 --name test --stage test --status failed job.log`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runJobsImport,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jobs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a stored job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsRm,
}

func init() {
	jobsCmd.AddCommand(jobsImportCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsRmCmd)

	jobsImportCmd.Flags().Int64Var(&importID, "id", 0, "job id of the first file")
	jobsImportCmd.Flags().StringVar(&importName, "name", "", "job name (default: file name)")
	jobsImportCmd.Flags().StringVar(&importStage, "stage", "", "pipeline stage")
	jobsImportCmd.Flags().StringVar(&importStatus, "status", string(ci.JobSuccess), "job status")
	jobsImportCmd.Flags().StringVar(&importURL, "url", "", "job url")
	_ = jobsImportCmd.MarkFlagRequired("id")
}

func openStore() (*persistence.Store, error) {
	cfg := globalConfig
	if cfg == nil {
		cfg = persistence.NewConfigWithDefaults()
	}
	path := cfg.Database
	if path == "" {
		var err error
		if path, err = persistence.DefaultDatabasePath(); err != nil {
			return nil, err
		}
	}
	return persistence.OpenStore(path)
}

func runJobsImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := checkJobID(importID); err != nil {
		return err
	}
	status := ci.JobStatus(importStatus)
	if !status.Valid() {
		return fmt.Errorf("invalid job status %q", importStatus)
	}

	logs := make([][]byte, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for i, path := range args {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// #nosec G304 - paths are provided by the user
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			logs[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for i, path := range args {
		job := ci.Job{
			ID:     importID + int64(i),
			Name:   importName,
			Stage:  importStage,
			Status: status,
			WebURL: importURL,
		}
		if job.Name == "" {
			job.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if err := store.Save(ctx, persistence.JobLog{Job: job, Log: logs[i]}); err != nil {
			return err
		}
		logger.Info("imported job log", "id", job.ID, "path", path, "bytes", len(logs[i]))
	}
	sentry.AddBreadcrumb("jobs", fmt.Sprintf("imported %d job logs", len(args)))

	fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %d job log(s) into %s\n",
		tui.SuccessStyle.Render("✓"), len(args), tui.MutedStyle.Render(store.Path()))
	return nil
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	jobs, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintf(out, "%s No jobs stored\n", tui.Bullet())
		return nil
	}

	mode := terminal.Auto
	if globalConfig != nil {
		mode = globalConfig.Color
	}
	return style.NewPrinter(out, terminal.Colorize(mode, os.Stdout)).Print(ci.JobList(jobs))
}

// checkJobID rejects ids GitLab never assigns.
func checkJobID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid job id %d: must be positive", id)
	}
	return nil
}

func runJobsRm(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid job id %q", args[0])
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Removed job %d\n", tui.SuccessStyle.Render("✓"), id)
	return nil
}
