package gate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EvidenceGate is one gate's verdict inside a rollup, annotated with
// the artifact it was read from.
type EvidenceGate struct {
	GateID       string   `json:"gateId"`
	Status       Status   `json:"status"`
	Reasons      []string `json:"reasons,omitempty"`
	EvidencePath string   `json:"evidencePath"`
}

// Rollup is the release-readiness aggregate over several independently
// produced gate artifacts. Overall status is PASS only if every
// constituent gate is PASS; MISSING evidence fails the rollup.
type Rollup struct {
	Gates   []EvidenceGate `json:"gates"`
	Status  Status         `json:"status"`
	Reasons []string       `json:"reasons,omitempty"`
}

// EvaluateEvidenceDir reads one artifact per required gate id from dir
// (file name "<gateID>.json", each holding a serialized Result) and
// aggregates them. Gates are evaluated in sorted id order and every
// failure reason is collected before returning, so the classification
// is order-independent and complete.
func EvaluateEvidenceDir(dir string, requiredGateIDs []string) (*Rollup, error) {
	if len(requiredGateIDs) == 0 {
		return nil, fmt.Errorf("at least one required gate id is needed")
	}

	ids := make([]string, len(requiredGateIDs))
	copy(ids, requiredGateIDs)
	sort.Strings(ids)

	rollup := &Rollup{Status: StatusPass}
	for _, id := range ids {
		evidence := readEvidence(dir, id)
		rollup.Gates = append(rollup.Gates, evidence)
		if evidence.Status != StatusPass {
			rollup.Status = StatusFail
			for _, reason := range evidence.Reasons {
				rollup.Reasons = append(rollup.Reasons, fmt.Sprintf("%s: %s", id, reason))
			}
		}
	}
	return rollup, nil
}

func readEvidence(dir, gateID string) EvidenceGate {
	path := filepath.Join(dir, gateID+".json")
	evidence := EvidenceGate{GateID: gateID, EvidencePath: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			evidence.Status = StatusMissing
			evidence.Reasons = []string{fmt.Sprintf("evidence artifact not found: %s", path)}
			return evidence
		}
		evidence.Status = StatusFail
		evidence.Reasons = []string{fmt.Sprintf("evidence artifact unreadable: %v", err)}
		return evidence
	}

	var stored Result
	if err := json.Unmarshal(data, &stored); err != nil {
		evidence.Status = StatusFail
		evidence.Reasons = []string{fmt.Sprintf("evidence artifact unparsable: %v", err)}
		return evidence
	}
	if stored.GateID != gateID {
		evidence.Status = StatusFail
		evidence.Reasons = []string{fmt.Sprintf("evidence artifact names gate %q, expected %q", stored.GateID, gateID)}
		return evidence
	}

	evidence.Status = stored.Status
	evidence.Reasons = stored.Reasons
	return evidence
}

// WriteEvidence serializes a gate result into dir as "<gateID>.json",
// the format EvaluateEvidenceDir consumes.
func WriteEvidence(dir string, result Result) (string, error) {
	if result.GateID == "" {
		return "", fmt.Errorf("gate id is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create evidence directory: %w", err)
	}
	path := filepath.Join(dir, result.GateID+".json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal gate result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write evidence artifact: %w", err)
	}
	return path, nil
}
