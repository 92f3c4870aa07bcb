// Package backend declares the capability contract the differential
// harness consumes, plus in-memory implementations used as test doubles
// and for self-checks. Concrete wire-protocol and live-server adapters
// live outside this module; they only need these two methods.
package backend

import (
	"context"
	"fmt"

	"github.com/wireparity/wireparity/internal/scenario"
)

// Backend executes scenarios and reports structured outcomes.
// Implementations must not mutate the scenario and must return faults
// through the error value, never by panicking; the harness still guards
// against panics, but converting them here keeps backends honest.
type Backend interface {
	// Name identifies the backend in reports and log lines.
	Name() string

	// Execute runs every command of the scenario in order and returns
	// the observable outcome. A structured server-side failure is NOT
	// an error: it is an Outcome with Success=false. The error return
	// is for faults of the adapter itself (lost connection, bad state).
	Execute(ctx context.Context, s *scenario.Scenario) (*Outcome, error)
}

// Outcome is the result of one backend's execution of one scenario.
// Exactly one of CommandResults / ErrorMessage is meaningful, selected
// by Success.
type Outcome struct {
	Success        bool                `json:"success"`
	CommandResults []scenario.Document `json:"commandResults,omitempty"`
	ErrorMessage   string              `json:"errorMessage,omitempty"`
}

// SuccessOutcome builds a successful outcome from per-command results.
func SuccessOutcome(results ...scenario.Document) *Outcome {
	return &Outcome{Success: true, CommandResults: results}
}

// FailureOutcome builds a failed outcome carrying an error message.
func FailureOutcome(message string) *Outcome {
	return &Outcome{Success: false, ErrorMessage: message}
}

// Validate checks the success/results/message invariant.
func (o *Outcome) Validate() error {
	if o.Success && o.CommandResults == nil {
		return fmt.Errorf("successful outcome must carry command results")
	}
	if !o.Success && o.ErrorMessage == "" {
		return fmt.Errorf("failed outcome must carry an error message")
	}
	return nil
}
