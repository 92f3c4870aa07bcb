package flake

import (
	"context"
	"fmt"
	"sort"

	"github.com/wireparity/wireparity/internal/diff"
)

// RunFunc produces one full pass of per-scenario results. The estimator
// calls it once for the baseline and once per rerun; the callee is
// responsible for resetting backend state between passes.
type RunFunc func(ctx context.Context) ([]diff.Result, error)

// Report summarizes a flake-rate measurement.
type Report struct {
	BaselineScenarios int     `json:"baselineScenarios"`
	Reruns            int     `json:"reruns"`
	Observations      int     `json:"observations"`
	FlakyObservations int     `json:"flakyObservations"`
	FlakeRate         float64 `json:"flakeRate"`

	// FlakyScenarios lists the distinct scenario ids that produced at
	// least one drifting observation, sorted for determinism.
	FlakyScenarios []string `json:"flakyScenarios,omitempty"`
}

// EstimateFlakeRate runs the scenario set once for a baseline, then
// reruns it the given number of times. Every (rerun × scenario)
// observation whose fingerprint differs from the baseline fingerprint
// for that scenario id counts as flaky, as does an observation with no
// baseline at all. A result flipping from MATCH to MISMATCH is
// therefore a flake signal: divergence from the first run is what is
// measured, regardless of direction.
func EstimateFlakeRate(ctx context.Context, run RunFunc, reruns int) (*Report, error) {
	if reruns < 0 {
		return nil, fmt.Errorf("rerun count must be non-negative, got %d", reruns)
	}

	baselineResults, err := run(ctx)
	if err != nil {
		return nil, fmt.Errorf("baseline run: %w", err)
	}
	baseline := make(map[string]string, len(baselineResults))
	for _, result := range baselineResults {
		baseline[result.ScenarioID] = Fingerprint(result)
	}

	report := &Report{
		BaselineScenarios: len(baselineResults),
		Reruns:            reruns,
	}
	flaky := make(map[string]bool)

	for rerun := 0; rerun < reruns; rerun++ {
		results, err := run(ctx)
		if err != nil {
			return nil, fmt.Errorf("rerun %d: %w", rerun+1, err)
		}
		for _, result := range results {
			report.Observations++
			expected, ok := baseline[result.ScenarioID]
			if !ok || expected != Fingerprint(result) {
				report.FlakyObservations++
				flaky[result.ScenarioID] = true
			}
		}
	}

	if report.Observations > 0 {
		report.FlakeRate = float64(report.FlakyObservations) / float64(report.Observations)
	}
	for id := range flaky {
		report.FlakyScenarios = append(report.FlakyScenarios, id)
	}
	sort.Strings(report.FlakyScenarios)
	return report, nil
}
