package schema

import "fmt"

// InvalidTypeError reports a type graph that cannot form a schema.
type InvalidTypeError struct {
	Name    string
	Message string
}

func (e *InvalidTypeError) Error() string {
	if e.Name == "" {
		return "invalid type: " + e.Message
	}
	return fmt.Sprintf("invalid type %s: %s", e.Name, e.Message)
}

// TypeMap holds every named type reachable from the schema roots.
type TypeMap map[string]*Type

// BuildTypeMap discovers the named types reachable from roots, breadth
// first, through field and argument types, interfaces, possible types and
// input fields. Each named type is visited once, so cyclic references
// terminate. Two distinct definitions sharing a name are an error.
func BuildTypeMap(roots ...*Type) (TypeMap, error) {
	m := make(TypeMap)
	var queue []*Type

	visit := func(t *Type) error {
		named := t.Unwrap()
		if named == nil {
			return nil
		}
		if named.Name == "" {
			return &InvalidTypeError{Message: fmt.Sprintf("%s type has no name", named.Kind)}
		}
		if existing, ok := m[named.Name]; ok {
			if existing != named {
				return &InvalidTypeError{Name: named.Name, Message: "defined more than once"}
			}
			return nil
		}
		m[named.Name] = named
		queue = append(queue, named)
		return nil
	}

	for _, root := range roots {
		if root == nil {
			continue
		}
		if err := visit(root); err != nil {
			return nil, err
		}
	}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		var next []*Type
		for _, f := range t.Fields {
			next = append(next, f.Type)
			for _, a := range f.Arguments {
				next = append(next, a.Type)
			}
		}
		next = append(next, t.Interfaces...)
		next = append(next, t.PossibleTypes...)
		for _, f := range t.InputFields {
			next = append(next, f.Type)
		}
		for _, n := range next {
			if n == nil {
				return nil, &InvalidTypeError{Name: t.Name, Message: "references a nil type"}
			}
			if err := visit(n); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}
