package backend

import (
	"context"
	"fmt"

	"github.com/wireparity/wireparity/internal/scenario"
)

// MemoryBackend is a tiny in-process document store speaking a subset of
// the command dialect (insert, find, count, drop, ping). It exists so the
// harness, corpus builder, and flake estimator can be exercised
// end-to-end without a server; it is NOT a protocol implementation.
//
// State is shared across scenario executions within one backend
// instance, matching how a live reference server behaves within a run.
type MemoryBackend struct {
	BackendName string

	collections map[string][]scenario.Document
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(name string) *MemoryBackend {
	return &MemoryBackend{
		BackendName: name,
		collections: make(map[string][]scenario.Document),
	}
}

// Name implements Backend.
func (b *MemoryBackend) Name() string {
	if b.BackendName == "" {
		return "memory"
	}
	return b.BackendName
}

// Reset drops all collections. Used between flake-estimator reruns.
func (b *MemoryBackend) Reset() {
	b.collections = make(map[string][]scenario.Document)
}

// Execute implements Backend. The first unsupported or failing command
// turns the whole scenario into a failed outcome, mirroring how a real
// adapter stops a command sequence on the first server error.
func (b *MemoryBackend) Execute(_ context.Context, s *scenario.Scenario) (*Outcome, error) {
	results := make([]scenario.Document, 0, len(s.Commands))
	for i, cmd := range s.Commands {
		result, err := b.executeCommand(cmd)
		if err != nil {
			return FailureOutcome(fmt.Sprintf("command %d (%s) failed: %v", i, cmd.Name, err)), nil
		}
		results = append(results, result)
	}
	return SuccessOutcome(results...), nil
}

func (b *MemoryBackend) executeCommand(cmd scenario.Command) (scenario.Document, error) {
	switch cmd.Name {
	case "ping":
		return scenario.Document{"ok": scenario.Int(1)}, nil

	case "insert":
		name, err := collectionName(cmd.Payload)
		if err != nil {
			return nil, err
		}
		docs, ok := cmd.Payload["documents"].(scenario.Array)
		if !ok {
			return nil, fmt.Errorf("insert requires a documents array (code=14, codeName=TypeMismatch)")
		}
		for i, d := range docs {
			doc, ok := d.(scenario.Document)
			if !ok {
				return nil, fmt.Errorf("documents[%d] is not a document (code=14, codeName=TypeMismatch)", i)
			}
			b.collections[name] = append(b.collections[name], scenario.DeepCopy(doc).(scenario.Document))
		}
		return scenario.Document{"ok": scenario.Int(1), "n": scenario.Int(int64(len(docs)))}, nil

	case "count":
		name, err := collectionName(cmd.Payload)
		if err != nil {
			return nil, err
		}
		return scenario.Document{"ok": scenario.Int(1), "n": scenario.Int(int64(len(b.collections[name])))}, nil

	case "find":
		name, err := collectionName(cmd.Payload)
		if err != nil {
			return nil, err
		}
		docs := b.collections[name]
		batch := make(scenario.Array, len(docs))
		for i, d := range docs {
			batch[i] = scenario.DeepCopy(d)
		}
		return scenario.Document{
			"ok": scenario.Int(1),
			"cursor": scenario.Document{
				"id":         scenario.Int(0),
				"firstBatch": batch,
			},
		}, nil

	case "drop":
		name, err := collectionName(cmd.Payload)
		if err != nil {
			return nil, err
		}
		delete(b.collections, name)
		return scenario.Document{"ok": scenario.Int(1)}, nil

	default:
		return nil, fmt.Errorf("no such command: %q (code=59, codeName=CommandNotFound)", cmd.Name)
	}
}

func collectionName(payload scenario.Document) (string, error) {
	name, ok := payload["collection"].(scenario.String)
	if !ok || name == "" {
		return "", fmt.Errorf("missing collection name (code=73, codeName=InvalidNamespace)")
	}
	return string(name), nil
}
