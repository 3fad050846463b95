package schema

import (
	"context"
	"reflect"
)

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
	TypeKindList        TypeKind = "LIST"
	TypeKindNonNull     TypeKind = "NON_NULL"
)

// CoerceFunc converts a value between its external and internal form.
// It returns nil when the value cannot be represented.
type CoerceFunc func(value any) any

// ResolveTypeFunc picks the concrete object type of a value exposed through
// an interface or union. It returns nil when no possible type matches.
type ResolveTypeFunc func(ctx context.Context, abstract *Type, value any) *Type

// TypeNamer lets application values declare their GraphQL object type name.
type TypeNamer interface {
	GraphQLTypeName() string
}

// Type is a node of the type algebra. Named kinds carry a Name; LIST and
// NON_NULL wrap OfType. Types are built once, before the schema is
// constructed, and are read-only afterwards.
type Type struct {
	Kind        TypeKind
	Name        string
	Description string
	OfType      *Type

	// OBJECT and INTERFACE
	Fields []*Field
	// OBJECT: implemented interfaces
	Interfaces []*Type
	// INTERFACE and UNION
	PossibleTypes []*Type
	TypeResolver  ResolveTypeFunc

	// SCALAR
	CoerceIn  CoerceFunc
	CoerceOut CoerceFunc

	// ENUM
	EnumValues []*EnumValue
	// INPUT_OBJECT
	InputFields []*InputValue
}

func NewScalar(name, description string, coerceIn, coerceOut CoerceFunc) *Type {
	return &Type{Kind: TypeKindScalar, Name: name, Description: description, CoerceIn: coerceIn, CoerceOut: coerceOut}
}

func NewObject(name, description string) *Type {
	return &Type{Kind: TypeKindObject, Name: name, Description: description}
}

// NewInterface returns an interface type whose concrete types are resolved
// with DefaultResolveType unless TypeResolver is replaced before the schema
// is built.
func NewInterface(name, description string) *Type {
	return &Type{Kind: TypeKindInterface, Name: name, Description: description, TypeResolver: DefaultResolveType}
}

// NewUnion returns a union of the given object types.
func NewUnion(name, description string, members ...*Type) *Type {
	t := &Type{Kind: TypeKindUnion, Name: name, Description: description, TypeResolver: DefaultResolveType}
	return t.AddPossibleType(members...)
}

func NewEnum(name, description string) *Type {
	return &Type{Kind: TypeKindEnum, Name: name, Description: description}
}

func NewInputObject(name, description string) *Type {
	return &Type{Kind: TypeKindInputObject, Name: name, Description: description}
}

// ListOf wraps t in a list.
func ListOf(t *Type) *Type { return &Type{Kind: TypeKindList, OfType: t} }

// NonNullOf wraps t in a non-null modifier.
func NonNullOf(t *Type) *Type { return &Type{Kind: TypeKindNonNull, OfType: t} }

// AddField appends a field to an object or interface type.
func (t *Type) AddField(fields ...*Field) *Type {
	t.Fields = append(t.Fields, fields...)
	return t
}

// Implements declares that the object implements each interface, and
// registers the object as a possible type of the interface.
func (t *Type) Implements(ifaces ...*Type) *Type {
	for _, iface := range ifaces {
		t.Interfaces = append(t.Interfaces, iface)
		iface.PossibleTypes = append(iface.PossibleTypes, t)
	}
	return t
}

func (t *Type) AddPossibleType(objects ...*Type) *Type {
	t.PossibleTypes = append(t.PossibleTypes, objects...)
	return t
}

// AddValue adds an enum value. A nil internal value stands for the name.
func (t *Type) AddValue(name string, value any, description string) *Type {
	t.EnumValues = append(t.EnumValues, &EnumValue{Name: name, Value: value, Description: description})
	return t
}

func (t *Type) AddInputField(fields ...*InputValue) *Type {
	t.InputFields = append(t.InputFields, fields...)
	return t
}

// Unwrap strips every LIST and NON_NULL modifier and returns the named type.
func (t *Type) Unwrap() *Type {
	for t != nil && (t.Kind == TypeKindList || t.Kind == TypeKindNonNull) {
		t = t.OfType
	}
	return t
}

// String renders the type signature, e.g. [String!]!.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeKindList:
		return "[" + t.OfType.String() + "]"
	case TypeKindNonNull:
		return t.OfType.String() + "!"
	default:
		return t.Name
	}
}

// Equal reports whether both types have the same signature.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.String() == other.String()
}

func (t *Type) IsNonNull() bool { return t != nil && t.Kind == TypeKindNonNull }

// IsList reports whether the type is a list, possibly wrapped in non-null.
func (t *Type) IsList() bool {
	if t == nil {
		return false
	}
	if t.Kind == TypeKindNonNull {
		t = t.OfType
	}
	return t != nil && t.Kind == TypeKindList
}

func (t *Type) IsWrapper() bool {
	return t != nil && (t.Kind == TypeKindList || t.Kind == TypeKindNonNull)
}

func (t *Type) IsAbstract() bool {
	return t != nil && (t.Kind == TypeKindInterface || t.Kind == TypeKindUnion)
}

func (t *Type) IsLeaf() bool {
	return t != nil && (t.Kind == TypeKindScalar || t.Kind == TypeKindEnum)
}

// Field returns the field declared on an object or interface type.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (t *Type) InputField(name string) *InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasPossibleType reports whether obj is the type itself, a member of the
// union, or an implementation of the interface.
func (t *Type) HasPossibleType(obj *Type) bool {
	if t == nil || obj == nil {
		return false
	}
	if t == obj || t.Name == obj.Name {
		return true
	}
	for _, pt := range t.PossibleTypes {
		if pt == obj || pt.Name == obj.Name {
			return true
		}
	}
	return false
}

// ResolveType returns the concrete type of value. Non-abstract types return
// themselves; interfaces and unions delegate to their TypeResolver.
func (t *Type) ResolveType(ctx context.Context, value any) *Type {
	if !t.IsAbstract() {
		return t
	}
	resolve := t.TypeResolver
	if resolve == nil {
		resolve = DefaultResolveType
	}
	return resolve(ctx, t, value)
}

// DefaultResolveType matches the runtime type name of value against the
// names of the abstract type's possible types.
func DefaultResolveType(_ context.Context, abstract *Type, value any) *Type {
	name := RuntimeTypeName(value)
	if name == "" {
		return nil
	}
	for _, pt := range abstract.PossibleTypes {
		if pt.Name == name {
			return pt
		}
	}
	return nil
}

// RuntimeTypeName returns the type name a value announces: TypeNamer, a
// "__typename" map entry, or the name of its Go type.
func RuntimeTypeName(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case TypeNamer:
		return v.GraphQLTypeName()
	case map[string]any:
		name, _ := v["__typename"].(string)
		return name
	}
	rt := reflect.TypeOf(value)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt.Name()
}
