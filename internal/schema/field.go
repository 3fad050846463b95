package schema

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *Type
	Arguments         []*InputValue
	Resolve           ResolveFunc
	IsDeprecated      bool
	DeprecationReason string
}

// NewField returns a field; a nil resolve falls back to DefaultResolveFunc.
func NewField(name string, typ *Type, resolve ResolveFunc) *Field {
	return &Field{Name: name, Type: typ, Resolve: resolve}
}

func (f *Field) Describe(description string) *Field {
	f.Description = description
	return f
}

func (f *Field) AddArgument(args ...*InputValue) *Field {
	f.Arguments = append(f.Arguments, args...)
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// InputValue is a field argument, directive argument or input object field.
// DefaultValue is kept in input form and coerced when applied.
type InputValue struct {
	Name              string
	Description       string
	Type              *Type
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

func NewInputValue(name string, typ *Type) *InputValue {
	return &InputValue{Name: name, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue {
	v.DefaultValue = value
	return v
}

func (v *InputValue) Describe(description string) *InputValue {
	v.Description = description
	return v
}

type EnumValue struct {
	Name              string
	Description       string
	Value             any
	IsDeprecated      bool
	DeprecationReason string
}

// internal returns the value the application sees for this enum member.
func (v *EnumValue) internal() any {
	if v.Value == nil {
		return v.Name
	}
	return v.Value
}

// IncludeFunc decides from a directive's coerced arguments whether the
// annotated selection takes part in execution.
type IncludeFunc func(args map[string]any) bool

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
	Include      IncludeFunc
}
