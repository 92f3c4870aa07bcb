package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestScenario(id string) *Scenario {
	return &Scenario{
		ID:          id,
		Description: "insert then count",
		Commands: []Command{
			{
				Name: "insert",
				Payload: Document{
					"collection": String("users"),
					"documents":  Array{Document{"_id": Int(1)}},
				},
			},
			{
				Name:    "count",
				Payload: Document{"collection": String("users")},
			},
		},
	}
}

func TestScenarioValidate(t *testing.T) {
	require.NoError(t, makeTestScenario("s1").Validate())
}

func TestScenarioValidate_MissingID(t *testing.T) {
	s := makeTestScenario("")
	assert.ErrorContains(t, s.Validate(), "id is required")
}

func TestScenarioValidate_NoCommands(t *testing.T) {
	s := &Scenario{ID: "s1", Commands: nil}
	assert.ErrorContains(t, s.Validate(), "commands")
}

func TestScenarioValidate_NilPayload(t *testing.T) {
	s := &Scenario{ID: "s1", Commands: []Command{{Name: "ping"}}}
	assert.ErrorContains(t, s.Validate(), "payload")
}

func TestScenarioClone_Independence(t *testing.T) {
	original := makeTestScenario("s1")

	clone := original.Clone()
	clone.Commands[0].Payload["collection"] = String("mutated")

	assert.Equal(t, String("users"), original.Commands[0].Payload["collection"])
	assert.Equal(t, original.ID, clone.ID)
}

func TestSortByID(t *testing.T) {
	scenarios := []*Scenario{
		makeTestScenario("charlie"),
		makeTestScenario("alpha"),
		makeTestScenario("bravo"),
	}

	SortByID(scenarios)

	assert.Equal(t, "alpha", scenarios[0].ID)
	assert.Equal(t, "bravo", scenarios[1].ID)
	assert.Equal(t, "charlie", scenarios[2].ID)
}
