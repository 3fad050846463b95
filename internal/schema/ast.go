package schema

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// buildAST loads the rendered SDL so documents can be validated against it.
func buildAST(s *Schema) (*ast.Schema, error) {
	doc, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: Render(s), BuiltIn: false})
	if err != nil {
		return nil, &InvalidTypeError{Name: s.QueryType.Name, Message: err.Error()}
	}
	return doc, nil
}
