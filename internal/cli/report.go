package cli

import (
	"github.com/spf13/cobra"

	"github.com/wireparity/wireparity/internal/artifact"
	"github.com/wireparity/wireparity/internal/render"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	RunID string
	TopK  int
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report <run.db>",
		Short: "Render a stored differential report",
		Long: `Load a run from the artifact database and render it in the selected
format (--format text prints Markdown, --format json prints the machine
report). Defaults to the latest run when --run is omitted.

Example:
  wireparity report ./wireparity-out/run.db
  wireparity report ./wireparity-out/run.db --run 7f62… --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderReport(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest)")
	cmd.Flags().IntVar(&opts.TopK, "top", 10, "number of top regressions")

	return cmd
}

func renderReport(cmd *cobra.Command, opts *ReportOptions, dbPath string) error {
	store, err := artifact.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open artifact database", err)
	}
	defer store.Close()

	runID := opts.RunID
	if runID == "" {
		runID, err = store.LatestRunID(cmd.Context())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve run", err)
		}
	}

	report, err := store.LoadReport(cmd.Context(), runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load report", err)
	}

	if opts.Format == "json" {
		if err := render.JSON(cmd.OutOrStdout(), report, opts.TopK); err != nil {
			return WrapExitError(ExitFailure, "failed to render report", err)
		}
		return nil
	}
	if err := render.Markdown(cmd.OutOrStdout(), report, opts.TopK); err != nil {
		return WrapExitError(ExitFailure, "failed to render report", err)
	}
	return nil
}
