package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireparity/wireparity/internal/backend"
	"github.com/wireparity/wireparity/internal/scenario"
)

// Test helper to build a successful outcome from result documents.
func makeSuccess(results ...scenario.Document) *backend.Outcome {
	return backend.SuccessOutcome(results...)
}

func TestCompare_IdenticalOutcomes(t *testing.T) {
	engine := NewEngine()
	outcome := makeSuccess(
		scenario.Document{
			"ok": scenario.Int(1),
			"n":  scenario.Int(3),
			"nested": scenario.Document{
				"values": scenario.Array{scenario.String("a"), scenario.Null{}, scenario.Int(7)},
			},
		},
	)

	entries := engine.Compare(outcome, outcome)

	assert.Empty(t, entries)
}

func TestCompare_EmptyOutcomes(t *testing.T) {
	engine := NewEngine()

	entries := engine.Compare(makeSuccess(), makeSuccess())

	assert.Empty(t, entries)
}

func TestCompare_NumericRepresentations(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{"n": scenario.Number("2")})
	right := makeSuccess(scenario.Document{"n": scenario.Number("2.00")})

	entries := engine.Compare(left, right)

	assert.Empty(t, entries, "2 and 2.00 have equal decimal value")
}

func TestCompare_NumericMismatch(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{"n": scenario.Int(3)})
	right := makeSuccess(scenario.Document{"n": scenario.Int(2)})

	entries := engine.Compare(left, right)

	require.Len(t, entries, 1)
	assert.Equal(t, "$.commandResults[0].n", entries[0].Path)
	assert.Equal(t, "value mismatch", entries[0].Note)
	assert.Equal(t, "3", entries[0].Left)
	assert.Equal(t, "2", entries[0].Right)
}

func TestCompare_MissingKey(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{"a": scenario.Int(1)})
	right := makeSuccess(scenario.Document{})

	entries := engine.Compare(left, right)

	require.Len(t, entries, 1)
	assert.Equal(t, "$.commandResults[0].a", entries[0].Path)
	assert.Contains(t, entries[0].Note, "missing key")
	assert.Equal(t, "1", entries[0].Left)
	assert.Equal(t, "", entries[0].Right)
}

func TestCompare_NullIsNotMissing(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{"a": scenario.Null{}})
	right := makeSuccess(scenario.Document{})

	entries := engine.Compare(left, right)

	require.Len(t, entries, 1, "explicit null vs absent key must diverge")
	assert.Contains(t, entries[0].Note, "missing key")
	assert.Equal(t, "null", entries[0].Left)
}

func TestCompare_NullEqualsNull(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{"a": scenario.Null{}})
	right := makeSuccess(scenario.Document{"a": scenario.Null{}})

	entries := engine.Compare(left, right)

	assert.Empty(t, entries)
}

func TestCompare_ListLengthThenElementwise(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{
		"values": scenario.Array{scenario.Int(1), scenario.Int(2), scenario.Int(3)},
	})
	right := makeSuccess(scenario.Document{
		"values": scenario.Array{scenario.Int(1), scenario.Int(2)},
	})

	entries := engine.Compare(left, right)

	require.Len(t, entries, 1, "only the length entry; shared elements are equal")
	assert.Equal(t, "$.commandResults[0].values.length", entries[0].Path)
	assert.Equal(t, "list size mismatch", entries[0].Note)
	assert.Equal(t, "3", entries[0].Left)
	assert.Equal(t, "2", entries[0].Right)
}

func TestCompare_ListLengthAndElementMismatch(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{
		"values": scenario.Array{scenario.Int(9), scenario.Int(2), scenario.Int(3)},
	})
	right := makeSuccess(scenario.Document{
		"values": scenario.Array{scenario.Int(1), scenario.Int(2)},
	})

	entries := engine.Compare(left, right)

	require.Len(t, entries, 2)
	assert.Equal(t, "$.commandResults[0].values.length", entries[0].Path)
	assert.Equal(t, "$.commandResults[0].values[0]", entries[1].Path)
}

func TestCompare_TypeMismatch(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{"a": scenario.String("1")})
	right := makeSuccess(scenario.Document{"a": scenario.Int(1)})

	entries := engine.Compare(left, right)

	require.Len(t, entries, 1)
	assert.Equal(t, "value mismatch", entries[0].Note)
	assert.Equal(t, `"1"`, entries[0].Left)
	assert.Equal(t, "1", entries[0].Right)
}

func TestCompare_SuccessFlagMismatch(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{"ok": scenario.Int(1)})
	right := backend.FailureOutcome("boom (code=11000)")

	entries := engine.Compare(left, right)

	require.Len(t, entries, 1)
	assert.Equal(t, "$.success", entries[0].Path)
	assert.Equal(t, "true", entries[0].Left)
	assert.Equal(t, "false", entries[0].Right)
}

func TestCompare_EquivalentFailureSignatures(t *testing.T) {
	engine := NewEngine()
	left := backend.FailureOutcome("X failed (code=59, codeName=CommandNotFound)")
	right := backend.FailureOutcome("Y failed (code=59)")

	entries := engine.Compare(left, right)

	assert.Empty(t, entries, "equal numeric codes make wording irrelevant")
}

func TestCompare_DifferingFailureCodes(t *testing.T) {
	engine := NewEngine()
	left := backend.FailureOutcome("X failed (code=59)")
	right := backend.FailureOutcome("X failed (code=11000)")

	entries := engine.Compare(left, right)

	require.Len(t, entries, 1)
	assert.Equal(t, "$.errorMessage", entries[0].Path)
	assert.Equal(t, "failure signature mismatch", entries[0].Note)
}

func TestCompare_EphemeralKeysStripped(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{
		"ok":            scenario.Int(1),
		"$clusterTime":  scenario.Document{"clusterTime": scenario.Int(777)},
		"operationTime": scenario.Int(123),
		"cursor": scenario.Document{
			"electionId": scenario.String("e-1"),
			"id":         scenario.Int(0),
		},
	})
	right := makeSuccess(scenario.Document{
		"ok":            scenario.Int(1),
		"$clusterTime":  scenario.Document{"clusterTime": scenario.Int(999)},
		"operationTime": scenario.Int(456),
		"cursor": scenario.Document{
			"electionId": scenario.String("e-2"),
			"id":         scenario.Int(0),
		},
	})

	entries := engine.Compare(left, right)

	assert.Empty(t, entries, "ephemeral metadata varies run-to-run and is not compared")
}

func TestCompare_CustomEphemeralKeys(t *testing.T) {
	engine := NewEngine(WithEphemeralKeys([]string{"requestId"}))
	left := makeSuccess(scenario.Document{
		"requestId":     scenario.String("r-1"),
		"operationTime": scenario.Int(1),
	})
	right := makeSuccess(scenario.Document{
		"requestId":     scenario.String("r-2"),
		"operationTime": scenario.Int(2),
	})

	entries := engine.Compare(left, right)

	// operationTime is no longer stripped once the key set is replaced.
	require.Len(t, entries, 1)
	assert.Equal(t, "$.commandResults[0].operationTime", entries[0].Path)
}

func TestCompare_DoesNotMutateInputs(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{
		"ok":           scenario.Int(1),
		"$clusterTime": scenario.Int(5),
	})
	right := makeSuccess(scenario.Document{
		"ok":           scenario.Int(1),
		"$clusterTime": scenario.Int(6),
	})

	engine.Compare(left, right)

	assert.Contains(t, left.CommandResults[0], "$clusterTime")
	assert.Contains(t, right.CommandResults[0], "$clusterTime")
}

func TestCompare_DeterministicEntryOrder(t *testing.T) {
	engine := NewEngine()
	left := makeSuccess(scenario.Document{
		"a": scenario.Int(1),
		"b": scenario.Int(2),
		"c": scenario.Int(3),
	})
	right := makeSuccess(scenario.Document{})

	first := engine.Compare(left, right)
	second := engine.Compare(left, right)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "$.commandResults[0].a", first[0].Path)
	assert.Equal(t, "$.commandResults[0].b", first[1].Path)
	assert.Equal(t, "$.commandResults[0].c", first[2].Path)
}
