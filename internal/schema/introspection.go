package schema

import (
	"context"
	"sort"
)

// Introspection types and meta fields, shared by every schema.
var (
	introspectionTypes []*Type

	typenameMetaField *Field
	schemaMetaField   *Field
	typeMetaField     *Field
)

func init() {
	buildIntrospection()
}

func buildIntrospection() {
	typeKind := NewEnum("__TypeKind", "An enum describing what kind of type a given `__Type` is.")
	for _, k := range []TypeKind{
		TypeKindScalar, TypeKindObject, TypeKindInterface, TypeKindUnion,
		TypeKindEnum, TypeKindInputObject, TypeKindList, TypeKindNonNull,
	} {
		typeKind.AddValue(string(k), k, "")
	}

	directiveLocation := NewEnum("__DirectiveLocation", "A Directive can be adjacent to many parts of the GraphQL language, a __DirectiveLocation describes one such possible adjacencies.")
	for _, loc := range []string{
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION",
		"FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA",
		"SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION",
		"INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
		"INPUT_FIELD_DEFINITION",
	} {
		directiveLocation.AddValue(loc, nil, "")
	}

	schemaType := NewObject("__Schema", "A GraphQL Schema defines the capabilities of a GraphQL server.")
	typeType := NewObject("__Type", "The fundamental unit of any GraphQL Schema is the type.")
	fieldType := NewObject("__Field", "Object and Interface types are described by a list of Fields, each of which has a name, potentially a list of arguments, and a return type.")
	inputValueType := NewObject("__InputValue", "Arguments provided to Fields or Directives and the input fields of an InputObject are represented as Input Values which describe their type and optionally a default value.")
	enumValueType := NewObject("__EnumValue", "One possible value for a given Enum.")
	directiveType := NewObject("__Directive", "A Directive provides a way to describe alternate runtime execution and type validation behavior in a GraphQL document.")

	includeDeprecated := func() *InputValue {
		return NewInputValue("includeDeprecated", Boolean).SetDefault(false)
	}
	nonNullList := func(t *Type) *Type { return NonNullOf(ListOf(NonNullOf(t))) }

	schemaType.AddField(
		NewField("description", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			return optionalString(src.(*Schema).Description), nil
		}),
		NewField("types", nonNullList(typeType), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Schema).sortedTypes(), nil
		}),
		NewField("queryType", NonNullOf(typeType), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Schema).QueryType, nil
		}),
		NewField("mutationType", typeType, func(_ context.Context, src any, _ map[string]any) (any, error) {
			if mt := src.(*Schema).MutationType; mt != nil {
				return mt, nil
			}
			return nil, nil
		}),
		NewField("subscriptionType", typeType, func(context.Context, any, map[string]any) (any, error) {
			return nil, nil
		}),
		NewField("directives", nonNullList(directiveType), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Schema).sortedDirectives(), nil
		}),
	)

	typeType.AddField(
		NewField("kind", NonNullOf(typeKind), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Type).Kind, nil
		}),
		NewField("name", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			return optionalString(src.(*Type).Name), nil
		}),
		NewField("description", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			return optionalString(src.(*Type).Description), nil
		}),
		NewField("specifiedByURL", String, func(context.Context, any, map[string]any) (any, error) {
			return nil, nil
		}),
		NewField("fields", ListOf(NonNullOf(fieldType)), func(_ context.Context, src any, args map[string]any) (any, error) {
			t := src.(*Type)
			if t.Kind != TypeKindObject && t.Kind != TypeKindInterface {
				return nil, nil
			}
			out := []*Field{}
			for _, f := range t.Fields {
				if f.IsDeprecated && !boolArg(args, "includeDeprecated") {
					continue
				}
				out = append(out, f)
			}
			return out, nil
		}).AddArgument(includeDeprecated()),
		NewField("interfaces", ListOf(NonNullOf(typeType)), func(_ context.Context, src any, _ map[string]any) (any, error) {
			t := src.(*Type)
			if t.Kind != TypeKindObject && t.Kind != TypeKindInterface {
				return nil, nil
			}
			out := append([]*Type{}, t.Interfaces...)
			sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
			return out, nil
		}),
		NewField("possibleTypes", ListOf(NonNullOf(typeType)), func(ctx context.Context, src any, _ map[string]any) (any, error) {
			t := src.(*Type)
			if !t.IsAbstract() {
				return nil, nil
			}
			return GetFieldContext(ctx).Schema.PossibleTypes(t), nil
		}),
		NewField("enumValues", ListOf(NonNullOf(enumValueType)), func(_ context.Context, src any, args map[string]any) (any, error) {
			t := src.(*Type)
			if t.Kind != TypeKindEnum {
				return nil, nil
			}
			out := []*EnumValue{}
			for _, ev := range t.EnumValues {
				if ev.IsDeprecated && !boolArg(args, "includeDeprecated") {
					continue
				}
				out = append(out, ev)
			}
			return out, nil
		}).AddArgument(includeDeprecated()),
		NewField("inputFields", ListOf(NonNullOf(inputValueType)), func(_ context.Context, src any, args map[string]any) (any, error) {
			t := src.(*Type)
			if t.Kind != TypeKindInputObject {
				return nil, nil
			}
			return filterInputValues(t.InputFields, args), nil
		}).AddArgument(includeDeprecated()),
		NewField("ofType", typeType, func(_ context.Context, src any, _ map[string]any) (any, error) {
			if t := src.(*Type); t.IsWrapper() {
				return t.OfType, nil
			}
			return nil, nil
		}),
		NewField("isOneOf", Boolean, func(_ context.Context, src any, _ map[string]any) (any, error) {
			if src.(*Type).Kind == TypeKindInputObject {
				return false, nil
			}
			return nil, nil
		}),
	)

	fieldType.AddField(
		NewField("name", NonNullOf(String), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Field).Name, nil
		}),
		NewField("description", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			return optionalString(src.(*Field).Description), nil
		}),
		NewField("args", nonNullList(inputValueType), func(_ context.Context, src any, args map[string]any) (any, error) {
			return filterInputValues(src.(*Field).Arguments, args), nil
		}).AddArgument(includeDeprecated()),
		NewField("type", NonNullOf(typeType), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Field).Type, nil
		}),
		NewField("isDeprecated", NonNullOf(Boolean), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Field).IsDeprecated, nil
		}),
		NewField("deprecationReason", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			f := src.(*Field)
			if !f.IsDeprecated {
				return nil, nil
			}
			return f.DeprecationReason, nil
		}),
	)

	inputValueType.AddField(
		NewField("name", NonNullOf(String), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*InputValue).Name, nil
		}),
		NewField("description", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			return optionalString(src.(*InputValue).Description), nil
		}),
		NewField("type", NonNullOf(typeType), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*InputValue).Type, nil
		}),
		NewField("defaultValue", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			iv := src.(*InputValue)
			if iv.DefaultValue == nil {
				return nil, nil
			}
			return renderValue(iv.Type, iv.DefaultValue), nil
		}),
		NewField("isDeprecated", NonNullOf(Boolean), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*InputValue).IsDeprecated, nil
		}),
		NewField("deprecationReason", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			iv := src.(*InputValue)
			if !iv.IsDeprecated {
				return nil, nil
			}
			return iv.DeprecationReason, nil
		}),
	)

	enumValueType.AddField(
		NewField("name", NonNullOf(String), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*EnumValue).Name, nil
		}),
		NewField("description", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			return optionalString(src.(*EnumValue).Description), nil
		}),
		NewField("isDeprecated", NonNullOf(Boolean), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*EnumValue).IsDeprecated, nil
		}),
		NewField("deprecationReason", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			ev := src.(*EnumValue)
			if !ev.IsDeprecated {
				return nil, nil
			}
			return ev.DeprecationReason, nil
		}),
	)

	directiveType.AddField(
		NewField("name", NonNullOf(String), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Directive).Name, nil
		}),
		NewField("description", String, func(_ context.Context, src any, _ map[string]any) (any, error) {
			return optionalString(src.(*Directive).Description), nil
		}),
		NewField("locations", nonNullList(directiveLocation), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Directive).Locations, nil
		}),
		NewField("args", nonNullList(inputValueType), func(_ context.Context, src any, args map[string]any) (any, error) {
			return filterInputValues(src.(*Directive).Arguments, args), nil
		}).AddArgument(includeDeprecated()),
		NewField("isRepeatable", NonNullOf(Boolean), func(_ context.Context, src any, _ map[string]any) (any, error) {
			return src.(*Directive).IsRepeatable, nil
		}),
	)

	introspectionTypes = []*Type{
		schemaType, typeType, fieldType, inputValueType, enumValueType,
		directiveType, typeKind, directiveLocation,
	}

	typenameMetaField = NewField("__typename", NonNullOf(String), func(ctx context.Context, src any, _ map[string]any) (any, error) {
		parent := GetFieldContext(ctx).ParentType
		if concrete := parent.ResolveType(ctx, src); concrete != nil {
			return concrete.Name, nil
		}
		return parent.Name, nil
	}).Describe("The name of the current Object type at runtime.")

	schemaMetaField = NewField("__schema", NonNullOf(schemaType), func(ctx context.Context, _ any, _ map[string]any) (any, error) {
		return GetFieldContext(ctx).Schema, nil
	}).Describe("Access the current type schema of this server.")

	typeMetaField = NewField("__type", typeType, func(ctx context.Context, _ any, args map[string]any) (any, error) {
		name, _ := args["name"].(string)
		if t := GetFieldContext(ctx).Schema.GetType(name); t != nil {
			return t, nil
		}
		return nil, nil
	}).Describe("Request the type information of a single type.").
		AddArgument(NewInputValue("name", NonNullOf(String)))
}

func filterInputValues(values []*InputValue, args map[string]any) []*InputValue {
	out := []*InputValue{}
	for _, v := range values {
		if v.IsDeprecated && !boolArg(args, "includeDeprecated") {
			continue
		}
		out = append(out, v)
	}
	return out
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}
