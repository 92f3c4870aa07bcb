// Package harness drives scenarios through two backends and packages
// the per-scenario verdicts into a differential report.
//
// The harness is synchronous: scenarios execute strictly in input
// order, and each scenario completes against both backends before the
// next starts. Backends may share mutable state across scenario
// executions (a live database does), so ordering is part of the
// reproducibility contract.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wireparity/wireparity/internal/backend"
	"github.com/wireparity/wireparity/internal/diff"
	"github.com/wireparity/wireparity/internal/scenario"
)

// Runner executes scenarios against a left and right backend and diffs
// the outcomes.
type Runner struct {
	left   backend.Backend
	right  backend.Backend
	engine *diff.Engine
	logger *slog.Logger
	now    func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the progress logger. The default discards output.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithEngine overrides the diff engine (custom signature grammar or
// ephemeral-key set).
func WithEngine(engine *diff.Engine) RunnerOption {
	return func(r *Runner) { r.engine = engine }
}

// WithClock overrides the report timestamp source, for deterministic
// artifacts in tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner builds a Runner over the two backends.
func NewRunner(left, right backend.Backend, opts ...RunnerOption) *Runner {
	r := &Runner{
		left:   left,
		right:  right,
		engine: diff.NewEngine(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every scenario in input order and returns the report.
// Backend faults become ERROR results; the batch never aborts because
// of a single scenario.
func (r *Runner) Run(ctx context.Context, scenarios []*scenario.Scenario) *diff.Report {
	report := &diff.Report{
		GeneratedAt:  r.now().UTC(),
		LeftBackend:  r.left.Name(),
		RightBackend: r.right.Name(),
		Results:      make([]diff.Result, 0, len(scenarios)),
	}

	for i, s := range scenarios {
		result := r.RunScenario(ctx, s)
		report.Results = append(report.Results, result)
		r.logger.Info("scenario compared",
			"index", i,
			"scenario_id", s.ID,
			"status", result.Status,
			"entries", len(result.Entries),
		)
	}
	return report
}

// RunScenario executes one scenario against both backends and diffs
// the outcomes.
func (r *Runner) RunScenario(ctx context.Context, s *scenario.Scenario) diff.Result {
	leftOutcome, err := executeSafely(ctx, r.left, s)
	if err != nil {
		return diff.Error(s.ID, r.left.Name(), r.right.Name(),
			fmt.Sprintf("left backend %s: %v", r.left.Name(), err))
	}
	rightOutcome, err := executeSafely(ctx, r.right, s)
	if err != nil {
		return diff.Error(s.ID, r.left.Name(), r.right.Name(),
			fmt.Sprintf("right backend %s: %v", r.right.Name(), err))
	}

	entries := r.engine.Compare(leftOutcome, rightOutcome)
	if len(entries) == 0 {
		return diff.Match(s.ID, r.left.Name(), r.right.Name())
	}
	return diff.Mismatch(s.ID, r.left.Name(), r.right.Name(), entries)
}

// executeSafely invokes a backend and converts panics and invariant
// violations into errors, so a crashing adapter becomes data instead of
// taking down the run.
func executeSafely(ctx context.Context, b backend.Backend, s *scenario.Scenario) (outcome *backend.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	outcome, err = b.Execute(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("execution fault: %w", err)
	}
	if outcome == nil {
		return nil, fmt.Errorf("execution fault: backend returned nil outcome")
	}
	if err := outcome.Validate(); err != nil {
		return nil, fmt.Errorf("invalid outcome: %w", err)
	}
	return outcome, nil
}
