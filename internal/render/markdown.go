// Package render turns reports into JSON and Markdown artifacts for
// humans and CI. Rendering is presentation only: every number it prints
// is derived from the report, never computed here.
package render

import (
	"fmt"
	"io"

	"github.com/wireparity/wireparity/internal/diff"
	"github.com/wireparity/wireparity/internal/drift"
)

// Markdown writes a human-facing report: the run summary, the verdict
// counts, and the top regressions with their first discrepancy.
func Markdown(w io.Writer, report *diff.Report, topK int) error {
	fmt.Fprintf(w, "# Differential report: %s vs %s\n\n", report.LeftBackend, report.RightBackend)
	fmt.Fprintf(w, "Generated at %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(w, "| Total | Match | Mismatch | Error |\n")
	fmt.Fprintf(w, "|------:|------:|---------:|------:|\n")
	fmt.Fprintf(w, "| %d | %d | %d | %d |\n\n",
		report.Total(), report.MatchCount(), report.MismatchCount(), report.ErrorCount())

	regressions := drift.TopRegressions(report, topK)
	if len(regressions) == 0 {
		fmt.Fprintf(w, "No regressions.\n")
		return nil
	}

	fmt.Fprintf(w, "## Top regressions\n\n")
	for i, sample := range regressions {
		fmt.Fprintf(w, "%d. `%s` — %s", i+1, sample.ScenarioID, sample.Status)
		switch sample.Status {
		case diff.StatusError:
			fmt.Fprintf(w, ": %s\n", sample.ErrorMessage)
		default:
			fmt.Fprintf(w, " (%d entries), first at `%s`: %s\n",
				sample.EntryCount, sample.FirstPath, sample.FirstNote)
		}
	}
	return nil
}
