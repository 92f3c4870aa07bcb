package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wireparity/wireparity/internal/artifact"
	"github.com/wireparity/wireparity/internal/backend"
	"github.com/wireparity/wireparity/internal/corpus"
	"github.com/wireparity/wireparity/internal/diff"
	"github.com/wireparity/wireparity/internal/flake"
	"github.com/wireparity/wireparity/internal/gate"
	"github.com/wireparity/wireparity/internal/harness"
	"github.com/wireparity/wireparity/internal/scenario"
)

// FlakeOptions holds flags for the flake command.
type FlakeOptions struct {
	*RootOptions
	OutputDir    string
	SeedText     string
	CorpusSize   int
	FlakeRuns    int
	ReproSamples int
	MaxFlakeRate float64
	FailOnGate   bool
}

// NewFlakeCommand creates the flake command.
func NewFlakeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FlakeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "flake <catalogue-path>",
		Short: "Measure flake rate and reproduction time",
		Long: `Run the scenario set once for a baseline, rerun it --flake-runs
times, and report the fraction of observations whose result fingerprint
drifts from the baseline. Also samples the wall-clock time to replay
the full set --repro-samples times and reports the 50th percentile.

Example:
  wireparity flake ./catalogues/crud.yaml --flake-runs 30 --repro-samples 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return measureFlake(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "wireparity-out", "directory for artifacts")
	cmd.Flags().StringVar(&opts.SeedText, "seed", "wireparity", "seed text for deterministic expansion")
	cmd.Flags().IntVar(&opts.CorpusSize, "corpus-size", 0, "expanded corpus size (0 = catalogue as-is)")
	cmd.Flags().IntVar(&opts.FlakeRuns, "flake-runs", 10, "number of reruns beyond the baseline")
	cmd.Flags().IntVar(&opts.ReproSamples, "repro-samples", 5, "number of reproduction-time samples")
	cmd.Flags().Float64Var(&opts.MaxFlakeRate, "max-flake-rate", 0, "flake gate: allowed flake rate")
	cmd.Flags().BoolVar(&opts.FailOnGate, "fail-on-gate", true, "exit non-zero when the flake gate fails")
	cmd.Flags().Bool("no-fail-on-gate", false, "disable fail-on-gate")

	return cmd
}

func measureFlake(cmd *cobra.Command, opts *FlakeOptions, cataloguePath string) error {
	if noFail, _ := cmd.Flags().GetBool("no-fail-on-gate"); noFail {
		opts.FailOnGate = false
	}
	if opts.FlakeRuns <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--flake-runs must be positive, got %d", opts.FlakeRuns))
	}
	if opts.ReproSamples <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--repro-samples must be positive, got %d", opts.ReproSamples))
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

	run := memoryRunFunc(scenarios)
	flakeReport, err := flake.EstimateFlakeRate(cmd.Context(), run, opts.FlakeRuns)
	if err != nil {
		return WrapExitError(ExitFailure, "flake estimation failed", err)
	}
	slog.Info("flake estimation complete",
		"observations", flakeReport.Observations,
		"flaky", flakeReport.FlakyObservations,
		"rate", flakeReport.FlakeRate,
	)

	reproReport, err := flake.MeasureReproTime(cmd.Context(), func(ctx context.Context) error {
		_, err := run(ctx)
		return err
	}, opts.ReproSamples)
	if err != nil {
		return WrapExitError(ExitFailure, "reproduction-time measurement failed", err)
	}

	if _, err := artifact.WriteJSON(opts.OutputDir, "flake.json", flakeReport); err != nil {
		return WrapExitError(ExitFailure, "failed to write flake artifact", err)
	}
	if _, err := artifact.WriteJSON(opts.OutputDir, "repro.json", reproReport); err != nil {
		return WrapExitError(ExitFailure, "failed to write repro artifact", err)
	}

	check, err := gate.Evaluate("flake", "flake_rate", gate.LessOrEqual, flakeReport.FlakeRate, opts.MaxFlakeRate)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to evaluate flake gate", err)
	}
	gateResult := gate.NewResult("flake", []gate.Check{check})
	if _, err := gate.WriteEvidence(opts.OutputDir+"/gates", gateResult); err != nil {
		return WrapExitError(ExitFailure, "failed to write gate evidence", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "flake rate %.4f over %d observations (%d reruns)\n",
		flakeReport.FlakeRate, flakeReport.Observations, flakeReport.Reruns)
	fmt.Fprintf(cmd.OutOrStdout(), "repro time p50: %s over %d samples\n",
		reproReport.ReproTimeP50, reproReport.Samples)
	fmt.Fprintf(cmd.OutOrStdout(), "flake gate %s\n", gateResult.Status)

	if gateResult.Status != gate.StatusPass && opts.FailOnGate {
		return NewExitError(ExitGateFailure, "flake gate failed")
	}
	return nil
}

// memoryRunFunc builds a RunFunc over fresh in-memory backends. A new
// backend pair per pass gives every rerun a clean state, which is what
// the flake definition assumes.
func memoryRunFunc(scenarios []*scenario.Scenario) flake.RunFunc {
	return func(ctx context.Context) ([]diff.Result, error) {
		left := backend.NewMemoryBackend("memory-left")
		right := backend.NewMemoryBackend("memory-right")
		report := harness.NewRunner(left, right).Run(ctx, scenarios)
		return report.Results, nil
	}
}
