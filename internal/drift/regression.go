// Package drift selects and ranks the regressions of a differential
// report for human-facing summaries, and scores field-level drift
// between fixture snapshots.
package drift

import (
	"sort"

	"github.com/wireparity/wireparity/internal/diff"
)

// Sample is a compact view of one non-MATCH result.
type Sample struct {
	ScenarioID string      `json:"scenarioId"`
	Status     diff.Status `json:"status"`
	EntryCount int         `json:"entryCount"`

	// FirstPath and FirstNote describe the first discrepancy of a
	// MISMATCH; ErrorMessage carries the fault of an ERROR.
	FirstPath    string `json:"firstPath,omitempty"`
	FirstNote    string `json:"firstNote,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// TopRegressions selects the non-MATCH results of a report, ranks them
// by severity (ERROR outranks MISMATCH), then entry count descending,
// then scenario id ascending, and returns the top k as samples. The
// tie-breaks make the ranking deterministic across runs.
func TopRegressions(report *diff.Report, k int) []Sample {
	if k <= 0 {
		return nil
	}

	var samples []Sample
	for _, result := range report.Results {
		if result.Status == diff.StatusMatch {
			continue
		}
		sample := Sample{
			ScenarioID:   result.ScenarioID,
			Status:       result.Status,
			EntryCount:   len(result.Entries),
			ErrorMessage: result.ErrorMessage,
		}
		if len(result.Entries) > 0 {
			sample.FirstPath = result.Entries[0].Path
			sample.FirstNote = result.Entries[0].Note
		}
		samples = append(samples, sample)
	}

	sort.Slice(samples, func(i, j int) bool {
		a, b := samples[i], samples[j]
		if a.Status != b.Status {
			return a.Status == diff.StatusError
		}
		if a.EntryCount != b.EntryCount {
			return a.EntryCount > b.EntryCount
		}
		return a.ScenarioID < b.ScenarioID
	})

	if len(samples) > k {
		samples = samples[:k]
	}
	return samples
}
