package executor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

func introspectionSchema(t *testing.T) *schema.Schema {
	t.Helper()
	episode := schema.NewEnum("Episode", "One of the films.").
		AddValue("NEWHOPE", nil, "").
		AddValue("EMPIRE", nil, "").
		AddValue("JEDI", nil, "")
	episode.EnumValues[1].IsDeprecated = true
	episode.EnumValues[1].DeprecationReason = "Too dark."

	droid := schema.NewObject("Droid", "").AddField(
		schema.NewField("name", schema.NonNullOf(schema.String), nil),
		schema.NewField("serial", schema.String, nil).Deprecate("Use name."),
	)
	query := schema.NewObject("Query", "").AddField(
		schema.NewField("droid", droid, valueResolver(map[string]any{"name": "R2-D2"})).
			AddArgument(schema.NewInputValue("episode", episode).SetDefault("JEDI")),
	)
	return mustSchema(t, schema.Config{Query: query})
}

// Pattern: Result comparison
func TestIntrospection_Result(t *testing.T) {
	sch := introspectionSchema(t)

	t.Run("Schema roots", func(t *testing.T) {
		gotRes := execute(t, sch, "{ __typename __schema { queryType { name } mutationType { name } } }", nil)
		wantRes := &Result{Data: map[string]any{
			"__typename": "Query",
			"__schema": map[string]any{
				"queryType":    map[string]any{"name": "Query"},
				"mutationType": nil,
			},
		}}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("Result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Enum values", func(t *testing.T) {
		gotRes := execute(t, sch, `{
			__type(name: "Episode") {
				kind name description
				active: enumValues { name }
				all: enumValues(includeDeprecated: true) { name isDeprecated deprecationReason }
			}
		}`, nil)
		wantRes := &Result{Data: map[string]any{"__type": map[string]any{
			"kind":        "ENUM",
			"name":        "Episode",
			"description": "One of the films.",
			"active": []any{
				map[string]any{"name": "NEWHOPE"},
				map[string]any{"name": "JEDI"},
			},
			"all": []any{
				map[string]any{"name": "NEWHOPE", "isDeprecated": false, "deprecationReason": nil},
				map[string]any{"name": "EMPIRE", "isDeprecated": true, "deprecationReason": "Too dark."},
				map[string]any{"name": "JEDI", "isDeprecated": false, "deprecationReason": nil},
			},
		}}}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("Result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Fields with wrapped types and arguments", func(t *testing.T) {
		gotRes := execute(t, sch, `{
			droid: __type(name: "Droid") { fields { name type { kind ofType { name } } } }
			query: __type(name: "Query") { fields { args { name defaultValue type { name } } } }
		}`, nil)
		wantRes := &Result{Data: map[string]any{
			"droid": map[string]any{"fields": []any{
				map[string]any{"name": "name", "type": map[string]any{"kind": "NON_NULL", "ofType": map[string]any{"name": "String"}}},
			}},
			"query": map[string]any{"fields": []any{
				map[string]any{"args": []any{
					map[string]any{"name": "episode", "defaultValue": "JEDI", "type": map[string]any{"name": "Episode"}},
				}},
			}},
		}}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("Result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Unknown type", func(t *testing.T) {
		gotRes := execute(t, sch, `{ __type(name: "Nope") { name } }`, nil)
		wantRes := &Result{Data: map[string]any{"__type": nil}}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("Result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Introspection is hidden below the root", func(t *testing.T) {
		gotRes := execute(t, sch, "{ droid { __typename name } }", nil)
		wantRes := &Result{Data: map[string]any{
			"droid": map[string]any{"__typename": "Droid", "name": "R2-D2"},
		}}
		if diff := cmp.Diff(wantRes, gotRes); diff != "" {
			t.Fatalf("Result mismatch (-want +got):\n%s", diff)
		}
	})
}
