package schema

import (
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

// Strategy selects how sibling fields of a selection set are executed.
type Strategy int

const (
	// StrategySerial resolves sibling fields one after another.
	StrategySerial Strategy = iota
	// StrategyParallel resolves sibling fields and list items concurrently.
	// Mutation root fields are always resolved serially.
	StrategyParallel
)

// Config describes the schema to construct.
type Config struct {
	Query       *Type
	Mutation    *Type
	Description string
	// Types lists types not reachable from the roots, e.g. interface
	// implementations only returned at runtime.
	Types      []*Type
	Directives []*Directive
	Middleware []Middleware
	Strategy   Strategy
}

// Schema represents the complete GraphQL schema
type Schema struct {
	QueryType    *Type
	MutationType *Type
	Description  string
	Types        TypeMap
	Directives   map[string]*Directive
	Middleware   MiddlewareChain
	Strategy     Strategy

	ast *ast.Schema
}

// New builds a schema: it discovers every reachable type, registers the
// directives and checks the type graph. The returned schema is read-only
// and may be shared by concurrent executions.
func New(cfg Config) (*Schema, error) {
	if cfg.Query == nil {
		return nil, &InvalidTypeError{Message: "query root type is required"}
	}
	if cfg.Query.Kind != TypeKindObject {
		return nil, &InvalidTypeError{Name: cfg.Query.Name, Message: "query root must be an object type"}
	}
	if cfg.Mutation != nil && cfg.Mutation.Kind != TypeKindObject {
		return nil, &InvalidTypeError{Name: cfg.Mutation.Name, Message: "mutation root must be an object type"}
	}

	roots := []*Type{cfg.Query, cfg.Mutation}
	roots = append(roots, cfg.Types...)
	roots = append(roots, introspectionTypes...)
	types, err := BuildTypeMap(roots...)
	if err != nil {
		return nil, err
	}
	if err := checkTypes(types); err != nil {
		return nil, err
	}

	s := &Schema{
		QueryType:    cfg.Query,
		MutationType: cfg.Mutation,
		Description:  cfg.Description,
		Types:        types,
		Directives:   make(map[string]*Directive),
		Middleware:   append(MiddlewareChain(nil), cfg.Middleware...),
		Strategy:     cfg.Strategy,
	}
	for _, d := range builtinDirectives {
		s.Directives[d.Name] = d
	}
	for _, d := range cfg.Directives {
		if _, ok := s.Directives[d.Name]; ok {
			return nil, &InvalidTypeError{Name: "@" + d.Name, Message: "directive defined more than once"}
		}
		s.Directives[d.Name] = d
	}

	s.ast, err = buildAST(s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// checkTypes rejects named types that cannot be expressed in a schema.
func checkTypes(types TypeMap) error {
	for _, t := range types {
		switch t.Kind {
		case TypeKindObject, TypeKindInterface:
			if len(t.Fields) == 0 {
				return &InvalidTypeError{Name: t.Name, Message: "must define at least one field"}
			}
			seen := make(map[string]bool, len(t.Fields))
			for _, f := range t.Fields {
				if seen[f.Name] {
					return &InvalidTypeError{Name: t.Name, Message: fmt.Sprintf("field %s defined more than once", f.Name)}
				}
				seen[f.Name] = true
			}
		case TypeKindUnion:
			if len(t.PossibleTypes) == 0 {
				return &InvalidTypeError{Name: t.Name, Message: "must have at least one member"}
			}
			for _, pt := range t.PossibleTypes {
				if pt.Kind != TypeKindObject {
					return &InvalidTypeError{Name: t.Name, Message: fmt.Sprintf("member %s is not an object type", pt.Name)}
				}
			}
		case TypeKindEnum:
			if len(t.EnumValues) == 0 {
				return &InvalidTypeError{Name: t.Name, Message: "must define at least one value"}
			}
		case TypeKindInputObject:
			if len(t.InputFields) == 0 {
				return &InvalidTypeError{Name: t.Name, Message: "must define at least one field"}
			}
		}
	}
	return nil
}

// GetQueryType returns the root query type
func (s *Schema) GetQueryType() *Type { return s.QueryType }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.MutationType }

// GetType returns the named type, or nil.
func (s *Schema) GetType(name string) *Type { return s.Types[name] }

// AST returns the schema in the form consumed by the query validator.
func (s *Schema) AST() *ast.Schema { return s.ast }

// GetField returns the definition of name on parent. Fields declared on
// the type take precedence; otherwise the meta fields __typename (any
// composite type), __schema and __type (query root only) are returned.
// It returns nil for anything else.
func (s *Schema) GetField(parent *Type, name string) *Field {
	if parent == nil {
		return nil
	}
	if f := parent.Field(name); f != nil {
		return f
	}
	switch name {
	case typenameMetaField.Name:
		return typenameMetaField
	case schemaMetaField.Name:
		if parent == s.QueryType {
			return schemaMetaField
		}
	case typeMetaField.Name:
		if parent == s.QueryType {
			return typeMetaField
		}
	}
	return nil
}

// PossibleTypes returns the object types an abstract type may resolve to,
// sorted by name.
func (s *Schema) PossibleTypes(abstract *Type) []*Type {
	out := append([]*Type(nil), abstract.PossibleTypes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// sortedTypes returns every named type sorted by name.
func (s *Schema) sortedTypes() []*Type {
	out := make([]*Type, 0, len(s.Types))
	for _, t := range s.Types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Schema) sortedDirectives() []*Directive {
	out := make([]*Directive, 0, len(s.Directives))
	for _, d := range s.Directives {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
