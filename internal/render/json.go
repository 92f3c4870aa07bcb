package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wireparity/wireparity/internal/diff"
	"github.com/wireparity/wireparity/internal/drift"
)

// jsonReport is the wire shape of a rendered report: the raw results
// plus the derived counts and ranked regressions, so CI consumers never
// re-derive them inconsistently.
type jsonReport struct {
	*diff.Report
	Counts      jsonCounts     `json:"counts"`
	Regressions []drift.Sample `json:"regressions,omitempty"`
}

type jsonCounts struct {
	Total    int `json:"total"`
	Match    int `json:"match"`
	Mismatch int `json:"mismatch"`
	Error    int `json:"error"`
}

// JSON writes the machine-facing report.
func JSON(w io.Writer, report *diff.Report, topK int) error {
	out := jsonReport{
		Report: report,
		Counts: jsonCounts{
			Total:    report.Total(),
			Match:    report.MatchCount(),
			Mismatch: report.MismatchCount(),
			Error:    report.ErrorCount(),
		},
		Regressions: drift.TopRegressions(report, topK),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
