// Package gate evaluates measured-value/threshold checks into PASS or
// FAIL verdicts with human-readable reasons, and rolls independently
// produced gate artifacts up into a release-readiness verdict.
package gate

import (
	"fmt"
	"math"
)

// Operator relates a measured value to its threshold.
type Operator string

const (
	// GreaterOrEqual passes when measured >= threshold.
	GreaterOrEqual Operator = "GREATER_OR_EQUAL"

	// LessOrEqual passes when measured <= threshold.
	LessOrEqual Operator = "LESS_OR_EQUAL"
)

// Status is a gate verdict. MISSING is distinct from FAIL: absent
// evidence must never be confused with evidence of failure, and must
// never be treated as passing either.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusMissing Status = "MISSING"
)

// Check binds one measured metric to a threshold.
type Check struct {
	GateID    string   `json:"gateId"`
	MetricKey string   `json:"metricKey"`
	Operator  Operator `json:"operator"`
	Measured  float64  `json:"measuredValue"`
	Threshold float64  `json:"thresholdValue"`
	Status    Status   `json:"status"`

	// Reason is set when the check fails, e.g.
	// "mismatch threshold exceeded: 3 > 0".
	Reason string `json:"reason,omitempty"`
}

// Evaluate computes a check's status. Non-finite measured or threshold
// values are validation faults, rejected eagerly.
func Evaluate(gateID, metricKey string, op Operator, measured, threshold float64) (Check, error) {
	if gateID == "" {
		return Check{}, fmt.Errorf("gate id is required")
	}
	if !isFinite(measured) {
		return Check{}, fmt.Errorf("gate %s: measured value is not finite: %v", gateID, measured)
	}
	if !isFinite(threshold) {
		return Check{}, fmt.Errorf("gate %s: threshold value is not finite: %v", gateID, threshold)
	}

	check := Check{
		GateID:    gateID,
		MetricKey: metricKey,
		Operator:  op,
		Measured:  measured,
		Threshold: threshold,
	}

	switch op {
	case GreaterOrEqual:
		if measured >= threshold {
			check.Status = StatusPass
		} else {
			check.Status = StatusFail
			check.Reason = fmt.Sprintf("%s below threshold: %v < %v", metricKey, measured, threshold)
		}
	case LessOrEqual:
		if measured <= threshold {
			check.Status = StatusPass
		} else {
			check.Status = StatusFail
			check.Reason = fmt.Sprintf("%s threshold exceeded: %v > %v", metricKey, measured, threshold)
		}
	default:
		return Check{}, fmt.Errorf("gate %s: unknown operator %q", gateID, op)
	}

	return check, nil
}

// Result aggregates the checks of one gate artifact.
type Result struct {
	GateID  string   `json:"gateId"`
	Status  Status   `json:"status"`
	Checks  []Check  `json:"checks"`
	Reasons []string `json:"reasons,omitempty"`
}

// NewResult derives a gate result from its checks. Every failing
// check's reason is collected; evaluation never short-circuits, so one
// run surfaces the complete list of problems. A gate with no checks
// fails: an empty gate proves nothing.
func NewResult(gateID string, checks []Check) Result {
	result := Result{GateID: gateID, Checks: checks, Status: StatusPass}
	if len(checks) == 0 {
		result.Status = StatusFail
		result.Reasons = []string{"gate has no checks"}
		return result
	}
	for _, check := range checks {
		if check.Status != StatusPass {
			result.Status = StatusFail
			reason := check.Reason
			if reason == "" {
				reason = fmt.Sprintf("check %s is %s", check.MetricKey, check.Status)
			}
			result.Reasons = append(result.Reasons, reason)
		}
	}
	return result
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
