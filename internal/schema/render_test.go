package schema_test

import (
	"testing"

	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	s := newTestSchema(t)

	want := `schema {
  query: Query
  mutation: Mutation
}

interface Character {
  name: String!
}

"""
One of the films.
"""
enum Episode {
  NEWHOPE
  EMPIRE
  JEDI
}

"""
A humanoid creature.
"""
type Human implements Character {
  name: String!
  height(unit: String = "METER"): Float
  mass: Float @deprecated(reason: "Use weight.")
}

type Mutation {
  rename(to: String!): String
}

type Query {
  hero(episode: Episode = JEDI): Character
  name: String
}
`
	assert.Equal(t, want, schema.Render(s))
}

func TestRender_CustomDirective(t *testing.T) {
	query := schema.NewObject("Query", "").AddField(schema.NewField("a", schema.String, nil))
	s, err := schema.New(schema.Config{
		Query: query,
		Directives: []*schema.Directive{{
			Name:      "upper",
			Locations: []string{"FIELD"},
			Arguments: []*schema.InputValue{schema.NewInputValue("enabled", schema.Boolean).SetDefault(true)},
		}},
	})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	assert.Contains(t, schema.Render(s), "directive @upper(enabled: Boolean = true) on FIELD\n")
	assert.NotNil(t, s.AST().Directives["upper"])
}
