package language

import (
	"errors"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Error is a located syntax error reported by the parser.
type Error = gqlerror.Error

// ParseQuery parses query text into a document. Empty or whitespace-only text
// yields a document with no operations. Syntax failures are returned as *Error;
// their line and column are whatever the parser could determine.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		var gerr *gqlerror.Error
		if errors.As(err, &gerr) {
			return nil, gerr
		}
		return nil, &Error{Message: err.Error()}
	}
	return doc, nil
}

// ErrorLocation returns the first location attached to a parse error.
func ErrorLocation(err *Error) (line, column int, ok bool) {
	if err == nil || len(err.Locations) == 0 {
		return 0, 0, false
	}
	return err.Locations[0].Line, err.Locations[0].Column, true
}
