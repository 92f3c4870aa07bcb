package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wireparity/wireparity/internal/gate"
)

// GatesOptions holds flags for the gates command.
type GatesOptions struct {
	*RootOptions
	EvidenceDir string
	GateIDs     []string
	FailOnGate  bool
}

// NewGatesCommand creates the gates command.
func NewGatesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GatesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gates",
		Short: "Roll independently produced gate artifacts into one verdict",
		Long: `Read one evidence artifact per required gate (<gateID>.json inside
--evidence-dir) and aggregate them. A gate with no artifact is MISSING,
an unparsable artifact is FAIL; the rollup is PASS only when every gate
is PASS. Every failure reason is collected before returning.

Example:
  wireparity gates --evidence-dir ./out/gates --gate differential --gate flake`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rollupGates(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.EvidenceDir, "evidence-dir", "wireparity-out/gates", "directory of gate evidence artifacts")
	cmd.Flags().StringArrayVar(&opts.GateIDs, "gate", nil, "required gate id (repeatable)")
	cmd.Flags().BoolVar(&opts.FailOnGate, "fail-on-gate", true, "exit non-zero when the rollup fails")
	cmd.Flags().Bool("no-fail-on-gate", false, "disable fail-on-gate")
	_ = cmd.MarkFlagRequired("gate")

	return cmd
}

func rollupGates(cmd *cobra.Command, opts *GatesOptions) error {
	if noFail, _ := cmd.Flags().GetBool("no-fail-on-gate"); noFail {
		opts.FailOnGate = false
	}

	rollup, err := gate.EvaluateEvidenceDir(opts.EvidenceDir, opts.GateIDs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to evaluate gates", err)
	}

	for _, g := range rollup.Gates {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", g.GateID, g.Status)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "overall: %s\n", rollup.Status)
	for _, reason := range rollup.Reasons {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", reason)
	}

	if rollup.Status != gate.StatusPass && opts.FailOnGate {
		return NewExitError(ExitGateFailure, "gate rollup failed")
	}
	return nil
}
