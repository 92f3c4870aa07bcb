// Package scenario defines the universal input unit of the differential
// engine: a named, ordered sequence of wire-protocol commands, together
// with the closed value model those commands carry.
//
// Scenarios are immutable once constructed. Identity is the ID: two
// scenarios with the same ID are expected to be semantically equivalent
// across a report, because IDs are used as diff join keys.
package scenario

import (
	"fmt"
	"slices"
)

// Command is one protocol-level command within a scenario: the command
// name plus its payload document.
type Command struct {
	Name    string   `json:"name"`
	Payload Document `json:"payload"`
}

// Scenario is a named command sequence. Backends may translate the
// payload but must never mutate the shared instance; use Clone when a
// mutable copy is needed.
type Scenario struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Commands    []Command `json:"commands"`
}

// Validate checks the structural invariants of a scenario.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scenario id is required")
	}
	if len(s.Commands) == 0 {
		return fmt.Errorf("scenario %q: commands list is required and must be non-empty", s.ID)
	}
	for i, cmd := range s.Commands {
		if cmd.Name == "" {
			return fmt.Errorf("scenario %q: commands[%d]: name is required", s.ID, i)
		}
		if cmd.Payload == nil {
			return fmt.Errorf("scenario %q: commands[%d]: payload is required (use empty document)", s.ID, i)
		}
	}
	return nil
}

// Clone returns a deep copy whose command payloads share no storage
// with the receiver.
func (s *Scenario) Clone() *Scenario {
	out := &Scenario{
		ID:          s.ID,
		Description: s.Description,
		Commands:    make([]Command, len(s.Commands)),
	}
	for i, cmd := range s.Commands {
		out.Commands[i] = Command{
			Name:    cmd.Name,
			Payload: DeepCopy(cmd.Payload).(Document),
		}
	}
	return out
}

// SortByID sorts scenarios by ID in place. The corpus builder uses this
// as the stable baseline ordering before seeded expansion.
func SortByID(scenarios []*Scenario) {
	slices.SortFunc(scenarios, func(a, b *Scenario) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}
