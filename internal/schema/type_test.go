package schema_test

import (
	"context"
	"testing"

	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/stretchr/testify/assert"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		typ  *schema.Type
		want string
	}{
		{schema.String, "String"},
		{schema.NonNullOf(schema.String), "String!"},
		{schema.ListOf(schema.NonNullOf(schema.Int)), "[Int!]"},
		{schema.NonNullOf(schema.ListOf(schema.ListOf(schema.ID))), "[[ID]]!"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestType_EqualIsStructural(t *testing.T) {
	a := schema.NonNullOf(schema.ListOf(schema.String))
	b := schema.NonNullOf(schema.ListOf(schema.String))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(schema.ListOf(schema.String)))
	assert.False(t, schema.ListOf(schema.String).Equal(schema.ListOf(schema.Int)))
}

func TestType_Unwrap(t *testing.T) {
	wrapped := schema.NonNullOf(schema.ListOf(schema.NonNullOf(schema.Boolean)))
	assert.Same(t, schema.Boolean, wrapped.Unwrap())
	assert.True(t, wrapped.IsNonNull())
	assert.True(t, wrapped.IsList())
	assert.True(t, wrapped.IsWrapper())
	assert.False(t, schema.Boolean.IsWrapper())
}

type droid struct{ Name string }

func (droid) GraphQLTypeName() string { return "Droid" }

type human struct{ Name string }

func TestType_ResolveType(t *testing.T) {
	character := schema.NewInterface("Character", "")
	character.AddField(schema.NewField("name", schema.String, nil))
	droidType := schema.NewObject("Droid", "").AddField(schema.NewField("name", schema.String, nil)).Implements(character)
	humanType := schema.NewObject("human", "").AddField(schema.NewField("name", schema.String, nil)).Implements(character)

	ctx := context.Background()
	t.Run("type namer", func(t *testing.T) {
		assert.Same(t, droidType, character.ResolveType(ctx, droid{}))
	})
	t.Run("typename key", func(t *testing.T) {
		assert.Same(t, droidType, character.ResolveType(ctx, map[string]any{"__typename": "Droid"}))
	})
	t.Run("go type name", func(t *testing.T) {
		assert.Same(t, humanType, character.ResolveType(ctx, &human{}))
	})
	t.Run("unknown", func(t *testing.T) {
		assert.Nil(t, character.ResolveType(ctx, 42))
	})
	t.Run("object resolves to itself", func(t *testing.T) {
		assert.Same(t, droidType, droidType.ResolveType(ctx, nil))
	})
	t.Run("custom resolver", func(t *testing.T) {
		u := schema.NewUnion("Thing", "", droidType, humanType)
		u.TypeResolver = func(context.Context, *schema.Type, any) *schema.Type { return humanType }
		assert.Same(t, humanType, u.ResolveType(ctx, droid{}))
	})
	assert.True(t, character.HasPossibleType(droidType))
	assert.True(t, droidType.HasPossibleType(droidType))
}
