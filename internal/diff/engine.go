package diff

import (
	"fmt"

	"github.com/wireparity/wireparity/internal/backend"
	"github.com/wireparity/wireparity/internal/scenario"
)

// DefaultEphemeralKeys lists result keys that vary run-to-run on any
// real server and are stripped before comparison: logical cluster time,
// operation time, election id, op time.
var DefaultEphemeralKeys = []string{
	"$clusterTime",
	"operationTime",
	"electionId",
	"opTime",
}

// Engine is the recursive structural comparator. The zero value is not
// usable; construct with NewEngine.
type Engine struct {
	parser    SignatureParser
	ephemeral map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSignatureParser overrides the failure-signature grammar.
func WithSignatureParser(p SignatureParser) Option {
	return func(e *Engine) { e.parser = p }
}

// WithEphemeralKeys replaces the stripped-key set.
func WithEphemeralKeys(keys []string) Option {
	return func(e *Engine) {
		e.ephemeral = make(map[string]bool, len(keys))
		for _, k := range keys {
			e.ephemeral[k] = true
		}
	}
}

// NewEngine builds a comparator with the reference signature grammar
// and the default ephemeral-key set.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{parser: DefaultSignatureParser()}
	WithEphemeralKeys(DefaultEphemeralKeys)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare recursively compares two outcomes rooted at "$". An empty
// entry list means the outcomes are equivalent.
func (e *Engine) Compare(left, right *backend.Outcome) []Entry {
	var entries []Entry

	switch {
	case left.Success && right.Success:
		leftResults := e.stripResults(left.CommandResults)
		rightResults := e.stripResults(right.CommandResults)
		e.compareArray("$.commandResults", leftResults, rightResults, &entries)

	case !left.Success && !right.Success:
		if !equivalentFailures(e.parser, left.ErrorMessage, right.ErrorMessage) {
			entries = append(entries, Entry{
				Path:  "$.errorMessage",
				Left:  left.ErrorMessage,
				Right: right.ErrorMessage,
				Note:  "failure signature mismatch",
			})
		}

	default:
		entries = append(entries, Entry{
			Path:  "$.success",
			Left:  fmt.Sprintf("%t", left.Success),
			Right: fmt.Sprintf("%t", right.Success),
			Note:  "one backend succeeded, the other failed",
		})
	}

	return entries
}

// stripResults returns copies of the command results with ephemeral
// metadata keys removed recursively. The inputs are never mutated.
func (e *Engine) stripResults(results []scenario.Document) scenario.Array {
	out := make(scenario.Array, len(results))
	for i, doc := range results {
		out[i] = e.stripValue(doc)
	}
	return out
}

func (e *Engine) stripValue(v scenario.Value) scenario.Value {
	switch val := v.(type) {
	case scenario.Document:
		out := make(scenario.Document, len(val))
		for k, elem := range val {
			if e.ephemeral[k] {
				continue
			}
			out[k] = e.stripValue(elem)
		}
		return out
	case scenario.Array:
		out := make(scenario.Array, len(val))
		for i, elem := range val {
			out[i] = e.stripValue(elem)
		}
		return out
	default:
		return v
	}
}

// compareValue appends entries for every divergence under path.
func (e *Engine) compareValue(path string, left, right scenario.Value, entries *[]Entry) {
	switch l := left.(type) {
	case scenario.Null:
		if _, ok := right.(scenario.Null); ok {
			return
		}
	case scenario.Bool:
		if r, ok := right.(scenario.Bool); ok {
			if l == r {
				return
			}
		}
	case scenario.String:
		if r, ok := right.(scenario.String); ok {
			if l == r {
				return
			}
		}
	case scenario.Number:
		if r, ok := right.(scenario.Number); ok {
			if numbersEqual(l, r) {
				return
			}
		}
	case scenario.Array:
		if r, ok := right.(scenario.Array); ok {
			e.compareArray(path, l, r, entries)
			return
		}
	case scenario.Document:
		if r, ok := right.(scenario.Document); ok {
			e.compareDocument(path, l, r, entries)
			return
		}
	}

	*entries = append(*entries, Entry{
		Path:  path,
		Left:  renderValue(left),
		Right: renderValue(right),
		Note:  "value mismatch",
	})
}

// compareDocument compares the union of both key sets. A key present on
// only one side yields a "missing key" entry, including when the present
// side is an explicit null.
func (e *Engine) compareDocument(path string, left, right scenario.Document, entries *[]Entry) {
	for _, k := range unionKeys(left, right) {
		childPath := path + "." + k
		leftVal, leftOK := left[k]
		rightVal, rightOK := right[k]
		switch {
		case leftOK && rightOK:
			e.compareValue(childPath, leftVal, rightVal, entries)
		case leftOK:
			*entries = append(*entries, Entry{
				Path: childPath,
				Left: renderValue(leftVal),
				Note: "missing key on right side",
			})
		default:
			*entries = append(*entries, Entry{
				Path:  childPath,
				Right: renderValue(rightVal),
				Note:  "missing key on left side",
			})
		}
	}
}

// compareArray emits a length entry when sizes differ, then compares
// element-wise up to the shorter length.
func (e *Engine) compareArray(path string, left, right scenario.Array, entries *[]Entry) {
	if len(left) != len(right) {
		*entries = append(*entries, Entry{
			Path:  path + ".length",
			Left:  fmt.Sprintf("%d", len(left)),
			Right: fmt.Sprintf("%d", len(right)),
			Note:  "list size mismatch",
		})
	}
	limit := len(left)
	if len(right) < limit {
		limit = len(right)
	}
	for i := 0; i < limit; i++ {
		e.compareValue(fmt.Sprintf("%s[%d]", path, i), left[i], right[i], entries)
	}
}

// numbersEqual compares two numbers as arbitrary-precision decimals, so
// 2, 2.0 and 2.00 are equal regardless of representation. Unparsable
// text (impossible for parser-produced Numbers) compares as raw text.
func numbersEqual(left, right scenario.Number) bool {
	l, errL := left.Decimal()
	r, errR := right.Decimal()
	if errL != nil || errR != nil {
		return left == right
	}
	return l.Cmp(r) == 0
}

// unionKeys returns the union of both documents' keys in canonical
// order, so entry ordering is deterministic across runs.
func unionKeys(left, right scenario.Document) []string {
	merged := make(scenario.Document, len(left)+len(right))
	for k := range left {
		merged[k] = scenario.Null{}
	}
	for k := range right {
		merged[k] = scenario.Null{}
	}
	return merged.SortedKeys()
}

// renderValue renders a value as canonical JSON text for diagnostics
// and fingerprints.
func renderValue(v scenario.Value) string {
	data, err := scenario.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
