package schema_test

import (
	"testing"

	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	episode := schema.NewEnum("Episode", "One of the films.").
		AddValue("NEWHOPE", 4, "").
		AddValue("EMPIRE", 5, "").
		AddValue("JEDI", 6, "")
	character := schema.NewInterface("Character", "")
	character.AddField(schema.NewField("name", schema.NonNullOf(schema.String), nil))
	human := schema.NewObject("Human", "A humanoid creature.").
		AddField(
			schema.NewField("name", schema.NonNullOf(schema.String), nil),
			schema.NewField("height", schema.Float, nil).
				AddArgument(schema.NewInputValue("unit", schema.String).SetDefault("METER")),
			schema.NewField("mass", schema.Float, nil).Deprecate("Use weight."),
		).
		Implements(character)
	query := schema.NewObject("Query", "").AddField(
		schema.NewField("hero", character, nil).
			AddArgument(schema.NewInputValue("episode", episode).SetDefault("JEDI")),
		schema.NewField("name", schema.String, nil),
	)
	mutation := schema.NewObject("Mutation", "").AddField(
		schema.NewField("rename", schema.String, nil).
			AddArgument(schema.NewInputValue("to", schema.NonNullOf(schema.String))),
	)
	s, err := schema.New(schema.Config{Query: query, Mutation: mutation, Types: []*schema.Type{human}})
	require.NoError(t, err)
	return s
}

func TestNew_RegistersReachableTypes(t *testing.T) {
	s := newTestSchema(t)
	for _, name := range []string{
		"Query", "Mutation", "Character", "Human", "Episode",
		"String", "Float", "Boolean",
		"__Schema", "__Type", "__Field", "__InputValue", "__EnumValue", "__Directive", "__TypeKind", "__DirectiveLocation",
	} {
		assert.NotNil(t, s.GetType(name), name)
	}
	assert.Nil(t, s.GetType("Droid"))
	assert.Contains(t, s.Directives, "skip")
	assert.Contains(t, s.Directives, "include")
	assert.Contains(t, s.Directives, "deprecated")
	assert.NotNil(t, s.AST())
}

func TestNew_Errors(t *testing.T) {
	t.Run("missing query", func(t *testing.T) {
		_, err := schema.New(schema.Config{})
		assert.EqualError(t, err, "invalid type: query root type is required")
	})
	t.Run("non-object root", func(t *testing.T) {
		_, err := schema.New(schema.Config{Query: schema.String})
		assert.EqualError(t, err, "invalid type String: query root must be an object type")
	})
	t.Run("object without fields", func(t *testing.T) {
		_, err := schema.New(schema.Config{Query: schema.NewObject("Query", "")})
		assert.EqualError(t, err, "invalid type Query: must define at least one field")
	})
	t.Run("union of non-object", func(t *testing.T) {
		u := schema.NewUnion("U", "", schema.String)
		query := schema.NewObject("Query", "").AddField(schema.NewField("u", u, nil))
		_, err := schema.New(schema.Config{Query: query})
		assert.EqualError(t, err, "invalid type U: member String is not an object type")
	})
	t.Run("duplicate directive", func(t *testing.T) {
		query := schema.NewObject("Query", "").AddField(schema.NewField("a", schema.String, nil))
		_, err := schema.New(schema.Config{
			Query:      query,
			Directives: []*schema.Directive{{Name: "skip", Locations: []string{"FIELD"}}},
		})
		assert.EqualError(t, err, "invalid type @skip: directive defined more than once")
	})
}

func TestSchema_GetField(t *testing.T) {
	s := newTestSchema(t)
	query := s.GetQueryType()
	human := s.GetType("Human")

	t.Run("declared field", func(t *testing.T) {
		f := s.GetField(query, "hero")
		require.NotNil(t, f)
		assert.Equal(t, "Character", f.Type.String())
	})
	t.Run("typename on any composite type", func(t *testing.T) {
		for _, parent := range []*schema.Type{query, human, s.GetMutationType()} {
			f := s.GetField(parent, "__typename")
			require.NotNil(t, f, parent.Name)
			assert.Equal(t, "String!", f.Type.String())
		}
	})
	t.Run("schema and type only on the query root", func(t *testing.T) {
		require.NotNil(t, s.GetField(query, "__schema"))
		assert.Equal(t, "__Schema!", s.GetField(query, "__schema").Type.String())
		typeField := s.GetField(query, "__type")
		require.NotNil(t, typeField)
		assert.Equal(t, "String!", typeField.Argument("name").Type.String())
		assert.Nil(t, s.GetField(human, "__schema"))
		assert.Nil(t, s.GetField(s.GetMutationType(), "__type"))
	})
	t.Run("unknown", func(t *testing.T) {
		assert.Nil(t, s.GetField(query, "villain"))
		assert.Nil(t, s.GetField(nil, "hero"))
	})
}

func TestSchema_PossibleTypesSorted(t *testing.T) {
	a := schema.NewObject("B", "").AddField(schema.NewField("x", schema.String, nil))
	b := schema.NewObject("A", "").AddField(schema.NewField("x", schema.String, nil))
	u := schema.NewUnion("U", "", a, b)
	query := schema.NewObject("Query", "").AddField(schema.NewField("u", u, nil))
	s, err := schema.New(schema.Config{Query: query})
	require.NoError(t, err)

	got := s.PossibleTypes(u)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)
}
