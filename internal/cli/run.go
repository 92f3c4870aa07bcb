package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wireparity/wireparity/internal/artifact"
	"github.com/wireparity/wireparity/internal/backend"
	"github.com/wireparity/wireparity/internal/corpus"
	"github.com/wireparity/wireparity/internal/diff"
	"github.com/wireparity/wireparity/internal/gate"
	"github.com/wireparity/wireparity/internal/harness"
	"github.com/wireparity/wireparity/internal/render"
	"github.com/wireparity/wireparity/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Left          string
	Right         string
	OutputDir     string
	SeedText      string
	CorpusSize    int
	TopK          int
	MaxMismatches int
	MaxErrors     int
	FailOnGate    bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <catalogue-path>",
		Short: "Run a differential comparison between two backends",
		Long: `Run every scenario of a catalogue (optionally expanded into a seeded
corpus) against the left and right backends and diff the outcomes.

Artifacts (run.db, report.json, gates/differential.json) are always
written before the gate verdict is evaluated, so CI captures evidence
even on failure.

Example:
  wireparity run ./catalogues/crud.yaml --seed release-7.2 --corpus-size 500
  wireparity run ./catalogues --output-dir ./out --no-fail-on-gate`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDifferential(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Left, "left", "memory", "left backend (implementation under test)")
	cmd.Flags().StringVar(&opts.Right, "right", "memory", "right backend (reference)")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "wireparity-out", "directory for run artifacts")
	cmd.Flags().StringVar(&opts.SeedText, "seed", "wireparity", "seed text for deterministic corpus expansion")
	cmd.Flags().IntVar(&opts.CorpusSize, "corpus-size", 0, "expanded corpus size (0 = catalogue as-is)")
	cmd.Flags().IntVar(&opts.TopK, "top", 10, "number of top regressions in rendered reports")
	cmd.Flags().IntVar(&opts.MaxMismatches, "max-mismatches", 0, "differential gate: allowed MISMATCH count")
	cmd.Flags().IntVar(&opts.MaxErrors, "max-errors", 0, "differential gate: allowed ERROR count")
	cmd.Flags().BoolVar(&opts.FailOnGate, "fail-on-gate", true, "exit non-zero when the differential gate fails")
	cmd.Flags().Bool("no-fail-on-gate", false, "disable fail-on-gate")

	return cmd
}

func runDifferential(cmd *cobra.Command, opts *RunOptions, cataloguePath string) error {
	if noFail, _ := cmd.Flags().GetBool("no-fail-on-gate"); noFail {
		opts.FailOnGate = false
	}

	scenarios, err := loadScenarios(cataloguePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalogue", err)
	}
	if opts.CorpusSize > 0 {
		scenarios, err = corpus.Build(scenarios, corpus.Config{SeedText: opts.SeedText, Size: opts.CorpusSize})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build corpus", err)
		}
	}
	slog.Info("corpus ready", "scenarios", len(scenarios), "seed", opts.SeedText)

	left, err := newBackend(opts.Left, "left")
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid left backend", err)
	}
	right, err := newBackend(opts.Right, "right")
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid right backend", err)
	}

	runner := harness.NewRunner(left, right, harness.WithLogger(slog.Default()))
	report := runner.Run(cmd.Context(), scenarios)

	runID, err := writeRunArtifacts(cmd, opts, report)
	if err != nil {
		return err
	}

	// Gate evaluation happens only after every artifact is on disk.
	gateResult, err := differentialGate(report, opts.MaxMismatches, opts.MaxErrors)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to evaluate differential gate", err)
	}
	if _, err := gate.WriteEvidence(filepath.Join(opts.OutputDir, "gates"), gateResult); err != nil {
		return WrapExitError(ExitFailure, "failed to write gate evidence", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", report.Summary())
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: differential gate %s\n", runID, gateResult.Status)
	for _, reason := range gateResult.Reasons {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", reason)
	}

	if gateResult.Status != gate.StatusPass && opts.FailOnGate {
		return NewExitError(ExitGateFailure, "differential gate failed")
	}
	return nil
}

func writeRunArtifacts(cmd *cobra.Command, opts *RunOptions, report *diff.Report) (string, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", WrapExitError(ExitFailure, "failed to create output directory", err)
	}

	store, err := artifact.Open(filepath.Join(opts.OutputDir, "run.db"))
	if err != nil {
		return "", WrapExitError(ExitFailure, "failed to open artifact store", err)
	}
	defer store.Close()

	runID := artifact.NewRunID()
	meta := artifact.RunMeta{RunID: runID, SeedText: opts.SeedText, CorpusSize: opts.CorpusSize}
	if err := store.SaveReport(cmd.Context(), meta, report); err != nil {
		return "", WrapExitError(ExitFailure, "failed to save report", err)
	}
	if _, err := artifact.WriteJSON(opts.OutputDir, "report.json", report); err != nil {
		return "", WrapExitError(ExitFailure, "failed to write report artifact", err)
	}
	mdPath := filepath.Join(opts.OutputDir, "report.md")
	md, err := os.Create(mdPath)
	if err != nil {
		return "", WrapExitError(ExitFailure, "failed to create markdown report", err)
	}
	defer md.Close()
	if err := render.Markdown(md, report, opts.TopK); err != nil {
		return "", WrapExitError(ExitFailure, "failed to render markdown report", err)
	}
	return runID, nil
}

// differentialGate binds the report's mismatch and error counts to
// their allowed maxima.
func differentialGate(report *diff.Report, maxMismatches, maxErrors int) (gate.Result, error) {
	mismatchCheck, err := gate.Evaluate("differential", "mismatch_count",
		gate.LessOrEqual, float64(report.MismatchCount()), float64(maxMismatches))
	if err != nil {
		return gate.Result{}, err
	}
	errorCheck, err := gate.Evaluate("differential", "error_count",
		gate.LessOrEqual, float64(report.ErrorCount()), float64(maxErrors))
	if err != nil {
		return gate.Result{}, err
	}
	return gate.NewResult("differential", []gate.Check{mismatchCheck, errorCheck}), nil
}

// loadScenarios accepts either a single catalogue file or a directory
// of catalogue files.
func loadScenarios(path string) ([]*scenario.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return scenario.LoadCatalogDir(path)
	}
	return scenario.LoadCatalog(path)
}

// newBackend resolves a backend name. Only the in-memory self-check
// backend ships in this module; wire and live adapters register their
// own commands around the harness API.
func newBackend(name, side string) (backend.Backend, error) {
	switch name {
	case "memory":
		return backend.NewMemoryBackend("memory-" + side), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (built-in: memory)", name)
	}
}
