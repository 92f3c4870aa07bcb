package flake

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// ReproFunc deterministically replays a captured failing trace from a
// clean state and returns once the same failure class is re-observed.
type ReproFunc func(ctx context.Context) error

// ReproReport summarizes reproduction-time sampling.
type ReproReport struct {
	Samples      int           `json:"samples"`
	DurationsMS  []float64     `json:"durationsMs"`
	ReproTimeP50 time.Duration `json:"reproTimeP50Ns"`
}

// MeasureReproTime collects the given number of independent wall-clock
// samples of the reproduction and reports the 50th percentile.
func MeasureReproTime(ctx context.Context, reproduce ReproFunc, samples int) (*ReproReport, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", samples)
	}

	durations := make([]float64, 0, samples)
	for i := 0; i < samples; i++ {
		start := time.Now()
		if err := reproduce(ctx); err != nil {
			return nil, fmt.Errorf("sample %d: reproduction failed: %w", i+1, err)
		}
		durations = append(durations, float64(time.Since(start).Milliseconds()))
	}

	p50, err := Percentile(durations, 0.5)
	if err != nil {
		return nil, err
	}
	return &ReproReport{
		Samples:      samples,
		DurationsMS:  durations,
		ReproTimeP50: time.Duration(p50 * float64(time.Millisecond)),
	}, nil
}

// Percentile returns the p-th percentile of the samples using the
// ceil(n*p)-1 index over the ascending-sorted samples, clamped to a
// valid index. p must lie in (0, 1] and every sample must be finite;
// violations are rejected, never coerced.
func Percentile(samples []float64, p float64) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("percentile requires at least one sample")
	}
	if math.IsNaN(p) || p <= 0 || p > 1 {
		return 0, fmt.Errorf("percentile must be in (0, 1], got %v", p)
	}
	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return 0, fmt.Errorf("sample %d is not finite: %v", i, s)
		}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx], nil
}
