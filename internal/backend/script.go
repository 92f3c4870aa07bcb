package backend

import (
	"context"
	"fmt"

	"github.com/wireparity/wireparity/internal/scenario"
)

// ScriptBackend replays canned outcomes keyed by scenario ID.
// It is the deterministic stand-in for a real adapter in tests and in
// the flake estimator's unit coverage. Unknown scenarios yield an
// adapter fault so wiring mistakes surface as ERROR results.
type ScriptBackend struct {
	BackendName string

	// Outcomes maps scenario ID to the outcome to return.
	Outcomes map[string]*Outcome

	// Faults maps scenario ID to an adapter error to return instead of
	// an outcome.
	Faults map[string]error

	// PanicOn lists scenario IDs whose execution panics, for exercising
	// the harness's recovery path.
	PanicOn map[string]bool

	calls int
}

// Name implements Backend.
func (b *ScriptBackend) Name() string {
	if b.BackendName == "" {
		return "script"
	}
	return b.BackendName
}

// Execute implements Backend.
func (b *ScriptBackend) Execute(_ context.Context, s *scenario.Scenario) (*Outcome, error) {
	b.calls++
	if b.PanicOn[s.ID] {
		panic(fmt.Sprintf("scripted panic for scenario %s", s.ID))
	}
	if err, ok := b.Faults[s.ID]; ok {
		return nil, err
	}
	if outcome, ok := b.Outcomes[s.ID]; ok {
		return outcome, nil
	}
	return nil, fmt.Errorf("no scripted outcome for scenario %q", s.ID)
}

// Calls reports how many Execute invocations the backend has served.
func (b *ScriptBackend) Calls() int {
	return b.calls
}
