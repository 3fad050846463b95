// Package validation checks query documents against a schema before they
// are executed.
package validation

import (
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/vektah/gqlparser/v2/validator"
)

// Validate runs the default validation rules over doc. It returns nil when
// the document is valid.
func Validate(s *schema.Schema, doc *language.QueryDocument) gqlerrors.List {
	errs := validator.ValidateWithRules(s.AST(), doc, nil)
	if len(errs) == 0 {
		return nil
	}
	return gqlerrors.FromGQLErrorList(errs)
}
