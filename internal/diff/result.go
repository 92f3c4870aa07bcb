// Package diff implements the recursive structural comparator and the
// per-scenario verdict model of the differential engine.
package diff

import (
	"fmt"
	"time"
)

// Status classifies a per-scenario comparison.
type Status string

const (
	// StatusMatch means both backends produced equivalent outcomes.
	StatusMatch Status = "MATCH"

	// StatusMismatch means the outcomes diverged; Entries locate where.
	StatusMismatch Status = "MISMATCH"

	// StatusError means at least one backend faulted instead of
	// returning a structured outcome.
	StatusError Status = "ERROR"
)

// Entry is one localized discrepancy between two outcomes. Left and
// Right carry the diverging values rendered as canonical JSON text; an
// absent side is the empty string, which keeps "null" and "missing"
// distinguishable.
type Entry struct {
	Path  string `json:"path"`
	Left  string `json:"left"`
	Right string `json:"right"`
	Note  string `json:"note"`
}

// Result is the per-scenario verdict. Construct only through Match,
// Mismatch, and Error so the status invariants hold: a mismatch always
// carries at least one entry, an error always carries a message.
type Result struct {
	ScenarioID   string  `json:"scenarioId"`
	LeftBackend  string  `json:"leftBackend"`
	RightBackend string  `json:"rightBackend"`
	Status       Status  `json:"status"`
	Entries      []Entry `json:"entries,omitempty"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
}

// Match builds a MATCH result.
func Match(scenarioID, left, right string) Result {
	return Result{
		ScenarioID:   scenarioID,
		LeftBackend:  left,
		RightBackend: right,
		Status:       StatusMatch,
	}
}

// Mismatch builds a MISMATCH result. Panics if entries is empty, since
// a mismatch without a discrepancy is a construction bug, not data.
func Mismatch(scenarioID, left, right string, entries []Entry) Result {
	if len(entries) == 0 {
		panic("diff.Mismatch: mismatch requires at least one entry")
	}
	return Result{
		ScenarioID:   scenarioID,
		LeftBackend:  left,
		RightBackend: right,
		Status:       StatusMismatch,
		Entries:      entries,
	}
}

// Error builds an ERROR result. Panics if message is empty.
func Error(scenarioID, left, right, message string) Result {
	if message == "" {
		panic("diff.Error: error requires a message")
	}
	return Result{
		ScenarioID:   scenarioID,
		LeftBackend:  left,
		RightBackend: right,
		Status:       StatusError,
		ErrorMessage: message,
	}
}

// Report packages the results of one differential run. Counts are
// derived, never stored.
type Report struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	LeftBackend  string    `json:"leftBackend"`
	RightBackend string    `json:"rightBackend"`
	Results      []Result  `json:"results"`
}

// Total returns the number of compared scenarios.
func (r *Report) Total() int {
	return len(r.Results)
}

// MatchCount returns the number of MATCH results.
func (r *Report) MatchCount() int {
	return r.count(StatusMatch)
}

// MismatchCount returns the number of MISMATCH results.
func (r *Report) MismatchCount() int {
	return r.count(StatusMismatch)
}

// ErrorCount returns the number of ERROR results.
func (r *Report) ErrorCount() int {
	return r.count(StatusError)
}

func (r *Report) count(status Status) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// Summary renders the one-line human summary used by CLI output.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d scenarios: %d match, %d mismatch, %d error",
		r.Total(), r.MatchCount(), r.MismatchCount(), r.ErrorCount())
}
